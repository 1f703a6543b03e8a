package repositories

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Predicate is a single SQL condition with its bound arguments.
type Predicate struct {
	Clause string
	Args   []any
}

func Eq(column string, value any) Predicate {
	return Predicate{Clause: column + " = ?", Args: []any{value}}
}

// Predicates are combined with AND in one Where call when applied.
type Predicates []Predicate

func (p Predicates) And(more ...Predicate) Predicates {
	out := make(Predicates, 0, len(p)+len(more))
	out = append(out, p...)
	return append(out, more...)
}

func (p Predicates) Apply(db *gorm.DB) *gorm.DB {
	if len(p) == 0 {
		return db
	}
	clauses := make([]string, 0, len(p))
	var args []any
	for _, pred := range p {
		clauses = append(clauses, "("+pred.Clause+")")
		args = append(args, pred.Args...)
	}
	return db.Where(strings.Join(clauses, " AND "), args...)
}

// NormalizeLimit maps non-positive values to DefaultLimit and caps at MaxLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
