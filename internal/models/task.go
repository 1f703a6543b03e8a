package models

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusRejected   TaskStatus = "rejected"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{StatusNotStarted, StatusInProgress, StatusDone, StatusRejected}

func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const MaxTitleLength = 255

type Task struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	Description  *string    `json:"description" gorm:"type:text"`
	Status       TaskStatus `json:"status" gorm:"size:20;not null;default:'not_started';index"`
	CreatedByID  int64      `json:"createdById" gorm:"not null;index"`
	AssignedToID *int64     `json:"assignedToId" gorm:"index"`
	DueDate      *time.Time `json:"dueDate"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	CreatedBy  *User `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	AssignedTo *User `json:"-" gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL"`
}

// TaskView is a task joined with its creator and assignee summaries.
type TaskView struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  *string      `json:"description"`
	Status       TaskStatus   `json:"status"`
	CreatedByID  int64        `json:"createdById"`
	AssignedToID *int64       `json:"assignedToId"`
	DueDate      *time.Time   `json:"dueDate"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	CreatedBy    *UserSummary `json:"createdBy"`
	AssignedTo   *UserSummary `json:"assignedTo"`
}

func (t *Task) View() TaskView {
	return TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		CreatedByID:  t.CreatedByID,
		AssignedToID: t.AssignedToID,
		DueDate:      t.DueDate,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CreatedBy:    t.CreatedBy.Summary(),
		AssignedTo:   t.AssignedTo.Summary(),
	}
}

func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// TaskSummary holds per-status counts; every status is always present.
type TaskSummary struct {
	Counts map[TaskStatus]int64
	Total  int64
}

func NewTaskSummary() TaskSummary {
	counts := make(map[TaskStatus]int64, len(TaskStatuses))
	for _, status := range TaskStatuses {
		counts[status] = 0
	}
	return TaskSummary{Counts: counts}
}

func (s TaskSummary) MarshalJSON() ([]byte, error) {
	out := make(map[string]int64, len(s.Counts)+1)
	for status, count := range s.Counts {
		out[string(status)] = count
	}
	out["total"] = s.Total
	return json.Marshal(out)
}

func (s *TaskSummary) UnmarshalJSON(data []byte) error {
	var in map[string]int64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = NewTaskSummary()
	for key, count := range in {
		if key == "total" {
			s.Total = count
			continue
		}
		s.Counts[TaskStatus(key)] = count
	}
	return nil
}
