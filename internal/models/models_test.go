package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"task-tracker/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus_Valid(t *testing.T) {
	for _, status := range models.TaskStatuses {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, models.TaskStatus("pending").Valid())
	assert.False(t, models.TaskStatus("").Valid())
	assert.False(t, models.TaskStatus("DONE").Valid())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, models.RoleLead.Valid())
	assert.True(t, models.RoleTeamMember.Valid())
	assert.False(t, models.Role("admin").Valid())
}

func TestTask_View(t *testing.T) {
	assignee := int64(2)
	task := models.Task{
		ID:           7,
		Title:        "Write docs",
		Status:       models.StatusInProgress,
		CreatedByID:  1,
		AssignedToID: &assignee,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		CreatedBy:    &models.User{ID: 1, Name: "Lead", Email: "lead@example.com", Role: models.RoleLead},
		AssignedTo:   &models.User{ID: 2, Name: "Member", Email: "member@example.com", Role: models.RoleTeamMember},
	}

	view := task.View()
	require.NotNil(t, view.CreatedBy)
	require.NotNil(t, view.AssignedTo)
	assert.Equal(t, int64(1), view.CreatedBy.ID)
	assert.Equal(t, models.RoleTeamMember, view.AssignedTo.Role)
	assert.True(t, task.IsAssignedTo(2))
	assert.False(t, task.IsAssignedTo(1))

	task.AssignedTo = nil
	task.AssignedToID = nil
	view = task.View()
	assert.Nil(t, view.AssignedTo)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"assignedTo":null`)
	assert.NotContains(t, string(data), "password")
}

func TestTaskSummary_JSON(t *testing.T) {
	summary := models.NewTaskSummary()
	summary.Counts[models.StatusDone] = 3
	summary.Total = 3

	data, err := json.Marshal(summary)
	require.NoError(t, err)

	var flat map[string]int64
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, map[string]int64{
		"not_started": 0,
		"in_progress": 0,
		"done":        3,
		"rejected":    0,
		"total":       3,
	}, flat)

	var decoded models.TaskSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, summary, decoded)
}

func TestEntityRef(t *testing.T) {
	ref, err := models.NewEntityRef(models.EntityTask, 5)
	require.NoError(t, err)
	assert.Equal(t, models.TaskEntity{ID: 5}, ref)

	ref, err = models.NewEntityRef(models.EntityUser, 9)
	require.NoError(t, err)
	assert.Equal(t, models.EntityUser, ref.EntityType())
	assert.Equal(t, int64(9), ref.EntityID())

	_, err = models.NewEntityRef("project", 1)
	assert.Error(t, err)
}

func TestDetails_ValueScan(t *testing.T) {
	in := models.Details{"previousStatus": "not_started", "newStatus": "done"}
	raw, err := in.Value()
	require.NoError(t, err)

	var out models.Details
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan([]byte(`{"fields":["title"]}`)))
	assert.Equal(t, []any{"title"}, out["fields"])

	assert.Error(t, out.Scan(42))
}

func TestActivityLogView_DefaultsDetails(t *testing.T) {
	log := models.ActivityLog{ID: 1, EntityType: models.EntityTask, EntityID: 2, Action: models.ActionCreated}
	view := log.View()
	require.NotNil(t, view.Details)
	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"details":{}`)
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	var patch struct {
		AssignedToID models.Optional[int64]  `json:"assignedToId"`
		Description  models.Optional[string] `json:"description"`
		DueDate      models.Optional[string] `json:"dueDate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"assignedToId":null,"description":"text"}`), &patch))

	assert.True(t, patch.AssignedToID.Set)
	assert.Nil(t, patch.AssignedToID.Value)

	assert.True(t, patch.Description.Set)
	require.NotNil(t, patch.Description.Value)
	assert.Equal(t, "text", *patch.Description.Value)

	assert.False(t, patch.DueDate.Set)
}

func TestActivityLog_View(t *testing.T) {
	log := models.ActivityLog{
		ID:         1,
		EntityType: models.EntityTask,
		EntityID:   4,
		Action:     models.ActionCreated,
		UserID:     1,
		Actor:      &models.User{ID: 1, Name: "Lead", Email: "lead@example.com", Role: models.RoleLead},
	}

	view := log.View()
	require.NotNil(t, view.User)
	assert.Equal(t, "Lead", view.User.Name)
	assert.Empty(t, view.User.Role)
	assert.NotNil(t, view.Details)
	assert.Nil(t, view.Entity)
}
