package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/Sa-tya/shelf-manager/internal/tasks"
)

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(tasks ...backlite.Task) ([]string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// RunTaskRequest optionally overrides the configured sweep parameters.
type RunTaskRequest struct {
	GracePeriodMinutes int `json:"grace_period_minutes" binding:"min=0"`
	RetentionDays      int `json:"retention_days" binding:"min=0"`
}

type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type RunTaskResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type sweepKind struct {
	info  TaskTypeInfo
	build func(defaults tasks.Config, req RunTaskRequest) backlite.Task
}

var sweepKinds = []sweepKind{
	{
		info: TaskTypeInfo{tasks.QueueCleanupBooklists, "Delete empty booklists left behind by failed saves"},
		build: func(defaults tasks.Config, req RunTaskRequest) backlite.Task {
			if req.GracePeriodMinutes > 0 {
				defaults.GracePeriod = time.Duration(req.GracePeriodMinutes) * time.Minute
			}
			return defaults.SweepTasks()[0]
		},
	},
	{
		info: TaskTypeInfo{tasks.QueueCleanupAudit, "Delete audit events older than the retention period"},
		build: func(defaults tasks.Config, req RunTaskRequest) backlite.Task {
			if req.RetentionDays > 0 {
				defaults.AuditRetentionDays = req.RetentionDays
			}
			return defaults.SweepTasks()[1]
		},
	},
}

var taskStatusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

// TasksController lets an operator trigger the cleanup sweeps by hand.
type TasksController struct {
	queue    TaskQueue
	defaults tasks.Config
}

// NewTasksController uses defaults when a run request leaves a parameter at 0.
func NewTasksController(queue TaskQueue, defaults tasks.Config) *TasksController {
	return &TasksController{queue: queue, defaults: defaults}
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := make([]TaskTypeInfo, 0, len(sweepKinds))
	for _, k := range sweepKinds {
		types = append(types, k.info)
	}
	c.JSON(http.StatusOK, gin.H{"task_types": types})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	name, ok := taskStatusNames[status]
	if !ok {
		name = "unknown"
	}
	c.JSON(http.StatusOK, gin.H{"id": taskID, "status": name})
}

// RunTask handles POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "invalid task options") {
		return
	}

	for _, k := range sweepKinds {
		if k.info.Type != taskType {
			continue
		}
		ids, err := tc.queue.Enqueue(k.build(tc.defaults, req))
		if err != nil {
			respondInternalError(c, err, "enqueue "+taskType)
			return
		}
		c.JSON(http.StatusAccepted, RunTaskResponse{Success: true, TaskID: ids[0], Type: taskType, Message: "task enqueued"})
		return
	}

	respondBadRequest(c, "unknown task type: "+taskType)
}
