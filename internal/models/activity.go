package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EntityType string

const (
	EntityUser EntityType = "user"
	EntityTask EntityType = "task"
)

func (e EntityType) Valid() bool {
	return e == EntityUser || e == EntityTask
}

type LogAction string

const (
	ActionCreated       LogAction = "created"
	ActionUpdated       LogAction = "updated"
	ActionStatusChanged LogAction = "status_changed"
	ActionAssigned      LogAction = "assigned"
)

func (a LogAction) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionStatusChanged, ActionAssigned:
		return true
	}
	return false
}

// EntityRef identifies the subject of an activity log entry.
// Implementations are TaskEntity and UserEntity.
type EntityRef interface {
	EntityType() EntityType
	EntityID() int64
}

type TaskEntity struct{ ID int64 }

func (e TaskEntity) EntityType() EntityType { return EntityTask }
func (e TaskEntity) EntityID() int64        { return e.ID }

type UserEntity struct{ ID int64 }

func (e UserEntity) EntityType() EntityType { return EntityUser }
func (e UserEntity) EntityID() int64        { return e.ID }

// NewEntityRef rebuilds the tagged reference from its persisted columns.
func NewEntityRef(entityType EntityType, id int64) (EntityRef, error) {
	switch entityType {
	case EntityTask:
		return TaskEntity{ID: id}, nil
	case EntityUser:
		return UserEntity{ID: id}, nil
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
}

// Details is the free-form before/after payload of a log entry, stored as
// JSON (JSONB on postgres).
type Details = datatypes.JSONMap

type ActivityLog struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	EntityType EntityType `json:"entityType" gorm:"size:20;not null;index:idx_activity_entity"`
	EntityID   int64      `json:"entityId" gorm:"not null;index:idx_activity_entity"`
	Action     LogAction  `json:"action" gorm:"size:20;not null"`
	UserID     int64      `json:"userId" gorm:"not null;index"`
	Details    Details    `json:"details" gorm:"not null"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`

	Actor *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeUpdate keeps the log append-only at the ORM level.
func (l *ActivityLog) BeforeUpdate(tx *gorm.DB) error {
	return fmt.Errorf("activity log %d is append-only", l.ID)
}

func (l *ActivityLog) Entity() (EntityRef, error) {
	return NewEntityRef(l.EntityType, l.EntityID)
}

// EntitySummary is a short description of the logged entity.
type EntitySummary struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type ActivityLogView struct {
	ID         int64          `json:"id"`
	EntityType EntityType     `json:"entityType"`
	EntityID   int64          `json:"entityId"`
	Action     LogAction      `json:"action"`
	UserID     int64          `json:"userId"`
	Details    Details        `json:"details"`
	CreatedAt  time.Time      `json:"createdAt"`
	User       *UserSummary   `json:"user"`
	Entity     *EntitySummary `json:"entity"`
}

func (l *ActivityLog) View() ActivityLogView {
	view := ActivityLogView{
		ID:         l.ID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Action:     l.Action,
		UserID:     l.UserID,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt,
	}
	if l.Actor != nil {
		view.User = &UserSummary{ID: l.Actor.ID, Name: l.Actor.Name, Email: l.Actor.Email}
	}
	if view.Details == nil {
		view.Details = Details{}
	}
	return view
}
