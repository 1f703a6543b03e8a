package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/repositories"

	"go.uber.org/zap"
)

type CreateTaskInput struct {
	Title        string
	Description  *string
	AssignedToID *int64
	DueDate      *time.Time
}

// TaskPatch is a partial update. Title and Status are nil when absent;
// the Optional fields also carry an explicit null.
type TaskPatch struct {
	Title        *string
	Description  models.Optional[string]
	Status       *models.TaskStatus
	AssignedToID models.Optional[int64]
	DueDate      models.Optional[time.Time]
}

type TaskFilter struct {
	Status *models.TaskStatus
	Limit  int
}

type TaskService interface {
	CreateTask(ctx context.Context, actor models.Actor, input CreateTaskInput) (*models.TaskView, error)
	GetTask(ctx context.Context, actor models.Actor, id int64) (*models.TaskView, error)
	ListTasks(ctx context.Context, actor models.Actor, filter TaskFilter) ([]models.TaskView, error)
	UpdateTask(ctx context.Context, actor models.Actor, id int64, patch TaskPatch) (*models.TaskView, error)
	SummarizeTasks(ctx context.Context, actor models.Actor) (models.TaskSummary, error)
}

type TaskServiceImpl struct {
	store  *repositories.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskService(store *repositories.Store, log *zap.Logger) *TaskServiceImpl {
	return &TaskServiceImpl{store: store, logger: logger.OrNop(log), now: time.Now}
}

// WithClock replaces the time source used for timestamps.
func (s *TaskServiceImpl) WithClock(now func() time.Time) *TaskServiceImpl {
	s.now = now
	return s
}

func requireActor(actor models.Actor) error {
	if actor.ID <= 0 || !actor.Role.Valid() {
		return newError(KindUnauthenticated, "authentication required")
	}
	return nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("task title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return "", invalid("task title must be at most %d characters", models.MaxTitleLength)
	}
	return title, nil
}

// storageError converts a repository failure into a service error, logging
// anything that is not a plain miss.
func (s *TaskServiceImpl) storageError(err error, op string, notFoundMsg string) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if notFoundMsg != "" && errors.Is(err, repositories.ErrNotFound) {
		return notFound("%s", notFoundMsg)
	}
	s.logger.Error("task storage failure", zap.String("op", op), zap.Error(err))
	return internal(err, "failed to "+op)
}

func (s *TaskServiceImpl) checkAssignee(ctx context.Context, store *repositories.Store, userID int64) error {
	user, err := store.Users.FindByID(ctx, userID)
	if err != nil {
		return s.storageError(err, "load assignee", "assigned user not found")
	}
	if !user.IsTeamMember() {
		return invalid("tasks can only be assigned to team members")
	}
	return nil
}

func (s *TaskServiceImpl) loadView(ctx context.Context, id int64) (*models.TaskView, error) {
	task, err := s.store.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, s.storageError(err, "load task", "task not found")
	}
	view := task.View()
	return &view, nil
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, actor models.Actor, input CreateTaskInput) (*models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !CanCreateTask(actor) {
		return nil, forbidden("only leads can create tasks")
	}
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := models.Task{
		Title:        title,
		Description:  input.Description,
		Status:       models.StatusNotStarted,
		CreatedByID:  actor.ID,
		AssignedToID: input.AssignedToID,
		DueDate:      input.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if task.AssignedToID != nil {
			if err := s.checkAssignee(ctx, tx, *task.AssignedToID); err != nil {
				return err
			}
		}
		if err := tx.Tasks.Create(ctx, &task); err != nil {
			return err
		}
		return tx.Activity.Append(ctx, &models.ActivityLog{
			EntityType: models.EntityTask,
			EntityID:   task.ID,
			Action:     models.ActionCreated,
			UserID:     actor.ID,
			Details:    models.Details{"title": task.Title, "assignedToId": task.AssignedToID},
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, s.storageError(err, "create task", "")
	}

	s.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("actor_id", actor.ID))

	return s.loadView(ctx, task.ID)
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, actor models.Actor, id int64) (*models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	task, err := s.store.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, s.storageError(err, "load task", "task not found")
	}
	if !CanViewTask(actor, task) {
		return nil, forbidden("you do not have permission to view this task")
	}
	view := task.View()
	return &view, nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, actor models.Actor, filter TaskFilter) ([]models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	preds := repositories.Predicates{TaskScope(actor)}
	if filter.Status != nil && filter.Status.Valid() {
		preds = preds.And(repositories.StatusIs(*filter.Status))
	}

	tasks, err := s.store.Tasks.List(ctx, preds, filter.Limit)
	if err != nil {
		return nil, s.storageError(err, "list tasks", "")
	}
	views := make([]models.TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, tasks[i].View())
	}
	return views, nil
}

// taskChange is the validated outcome of applying a patch to a task.
type taskChange struct {
	columns       map[string]any
	fields        []string
	assignee      bool
	status        bool
	prevAssignee  *int64
	prevStatus    models.TaskStatus
	newAssigneeID *int64
}

func (c *taskChange) set(field, column string, value any) {
	c.columns[column] = value
	c.fields = append(c.fields, field)
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// diff keeps only the patch entries the actor may change and that differ
// from the stored task.
func diff(task *models.Task, patch TaskPatch, allowed FieldSet) (*taskChange, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalid("invalid status value %q", *patch.Status)
	}

	change := &taskChange{
		columns:      map[string]any{},
		prevAssignee: task.AssignedToID,
		prevStatus:   task.Status,
	}

	if patch.Title != nil && allowed.Has(FieldTitle) {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		if title != task.Title {
			change.set(FieldTitle, "title", title)
		}
	}
	if patch.Description.Set && allowed.Has(FieldDescription) && !sameString(patch.Description.Value, task.Description) {
		change.set(FieldDescription, "description", nullable(patch.Description.Value))
	}
	if patch.Status != nil && allowed.Has(FieldStatus) && *patch.Status != task.Status {
		change.set(FieldStatus, "status", *patch.Status)
		change.status = true
	}
	if patch.AssignedToID.Set && allowed.Has(FieldAssignedToID) && !sameID(patch.AssignedToID.Value, task.AssignedToID) {
		change.set(FieldAssignedToID, "assigned_to_id", nullable(patch.AssignedToID.Value))
		change.assignee = true
		change.newAssigneeID = patch.AssignedToID.Value
	}
	if patch.DueDate.Set && allowed.Has(FieldDueDate) && !sameTime(patch.DueDate.Value, task.DueDate) {
		change.set(FieldDueDate, "due_date", nullable(patch.DueDate.Value))
	}

	if len(change.columns) == 0 {
		return nil, invalid("no valid updates")
	}
	return change, nil
}

// logEntry picks one action per update: ASSIGNED, then STATUS_CHANGED,
// then UPDATED. An ASSIGNED entry also carries a status transition made in
// the same patch.
func (c *taskChange) logEntry(taskID int64, actor models.Actor, at time.Time) *models.ActivityLog {
	entry := &models.ActivityLog{
		EntityType: models.EntityTask,
		EntityID:   taskID,
		UserID:     actor.ID,
		CreatedAt:  at,
	}
	switch {
	case c.assignee:
		entry.Action = models.ActionAssigned
		entry.Details = models.Details{"previousAssignee": c.prevAssignee, "newAssignee": c.newAssigneeID}
		if c.status {
			entry.Details["previousStatus"] = c.prevStatus
			entry.Details["newStatus"] = c.columns["status"]
		}
	case c.status:
		entry.Action = models.ActionStatusChanged
		entry.Details = models.Details{"previousStatus": c.prevStatus, "newStatus": c.columns["status"]}
	default:
		entry.Action = models.ActionUpdated
		entry.Details = models.Details{"fields": c.fields}
	}
	return entry
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, actor models.Actor, id int64, patch TaskPatch) (*models.TaskView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var action models.LogAction
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		task, err := tx.Tasks.FindByID(ctx, id)
		if err != nil {
			return s.storageError(err, "load task", "task not found")
		}
		if !CanMutateTask(actor, task) {
			return forbidden("you do not have permission to update this task")
		}

		change, err := diff(task, patch, FieldsMutableBy(actor, task))
		if err != nil {
			return err
		}
		if change.assignee && change.newAssigneeID != nil {
			if err := s.checkAssignee(ctx, tx, *change.newAssigneeID); err != nil {
				return err
			}
		}

		now := s.now()
		change.columns["updated_at"] = now
		if err := tx.Tasks.Update(ctx, id, change.columns); err != nil {
			return err
		}
		entry := change.logEntry(id, actor, now)
		action = entry.Action
		return tx.Activity.Append(ctx, entry)
	})
	if err != nil {
		return nil, s.storageError(err, "update task", "task not found")
	}

	s.logger.Info("task updated",
		zap.Int64("task_id", id),
		zap.Int64("actor_id", actor.ID),
		zap.String("action", string(action)))

	return s.loadView(ctx, id)
}

func (s *TaskServiceImpl) SummarizeTasks(ctx context.Context, actor models.Actor) (models.TaskSummary, error) {
	summary := models.NewTaskSummary()
	if err := requireActor(actor); err != nil {
		return summary, err
	}
	counts, err := s.store.Tasks.CountByStatus(ctx, repositories.Predicates{TaskScope(actor)})
	if err != nil {
		return summary, s.storageError(err, "summarize tasks", "")
	}
	for status, count := range counts {
		if _, known := summary.Counts[status]; !known {
			continue
		}
		summary.Counts[status] = count
		summary.Total += count
	}
	return summary, nil
}
