package handlers

import (
	"net/http"
	"time"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type createTaskRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	AssignedToID *int64  `json:"assignedToId"`
	DueDate      *string `json:"dueDate"`
}

// updateTaskRequest keeps null and absent apart for the clearable fields.
type updateTaskRequest struct {
	Title        *string                 `json:"title"`
	Description  models.Optional[string] `json:"description"`
	Status       *models.TaskStatus      `json:"status"`
	AssignedToID models.Optional[int64]  `json:"assignedToId"`
	DueDate      models.Optional[string] `json:"dueDate"`
}

func (r updateTaskRequest) patch() (services.TaskPatch, error) {
	patch := services.TaskPatch{
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		AssignedToID: r.AssignedToID,
	}
	if r.DueDate.Set {
		if r.DueDate.Value == nil {
			patch.DueDate = models.Null[time.Time]()
		} else {
			due, err := parseDueDate(*r.DueDate.Value)
			if err != nil {
				return patch, err
			}
			patch.DueDate = models.Some(due)
		}
	}
	return patch, nil
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		input.DueDate = &due
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), middleware.ActorFrom(c), input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task, "message": "Task created successfully"})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := services.TaskFilter{
		Status: queryEnum[models.TaskStatus](c, "status"),
		Limit:  queryLimit(c),
	}
	tasks, err := h.taskService.ListTasks(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.ActorFrom(c), id, patch)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "message": "Task updated successfully"})
}

func (h *TaskHandler) Summary(c *gin.Context) {
	summary, err := h.taskService.SummarizeTasks(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
