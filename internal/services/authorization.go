package services

import (
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/repositories"
)

// Task fields as accepted in an update patch.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldStatus       = "status"
	FieldAssignedToID = "assignedToId"
	FieldDueDate      = "dueDate"
)

type FieldSet map[string]struct{}

func NewFieldSet(fields ...string) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func (s FieldSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// CanViewTask allows the creating lead and the assignee.
func CanViewTask(actor models.Actor, task *models.Task) bool {
	if task == nil {
		return false
	}
	if actor.IsLead() && task.CreatedByID == actor.ID {
		return true
	}
	return task.IsAssignedTo(actor.ID)
}

func CanCreateTask(actor models.Actor) bool {
	return actor.IsLead()
}

// CanMutateTask allows the creating lead and the assignee. What each of them
// may change is decided by FieldsMutableBy.
func CanMutateTask(actor models.Actor, task *models.Task) bool {
	return CanViewTask(actor, task)
}

func FieldsMutableBy(actor models.Actor, task *models.Task) FieldSet {
	if task == nil {
		return NewFieldSet()
	}
	if actor.IsLead() && task.CreatedByID == actor.ID {
		return NewFieldSet(FieldTitle, FieldDescription, FieldStatus, FieldAssignedToID, FieldDueDate)
	}
	if task.IsAssignedTo(actor.ID) {
		return NewFieldSet(FieldStatus)
	}
	return NewFieldSet()
}

func CanListUsers(actor models.Actor) bool {
	return actor.IsLead()
}

// TaskScope is the list/summary visibility rule: leads see what they
// created, everyone else sees what is assigned to them.
func TaskScope(actor models.Actor) repositories.Predicate {
	if actor.IsLead() {
		return repositories.CreatedBy(actor.ID)
	}
	return repositories.AssignedTo(actor.ID)
}
