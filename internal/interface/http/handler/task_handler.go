package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/dto"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/middleware"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
	"github.com/ignatzorin/timebank-backend/internal/usecase/task"
)

type TaskHandler struct {
	createUC  *task.CreateTaskUseCase
	updateUC  *task.UpdateTaskUseCase
	publishUC *task.PublishTaskUseCase
	cancelUC  *task.CancelTaskUseCase
	getUC     *task.GetTaskUseCase
	listUC    *task.ListTasksUseCase
	listMyUC  *task.ListMyTasksUseCase
}

func NewTaskHandler(
	createUC *task.CreateTaskUseCase,
	updateUC *task.UpdateTaskUseCase,
	publishUC *task.PublishTaskUseCase,
	cancelUC *task.CancelTaskUseCase,
	getUC *task.GetTaskUseCase,
	listUC *task.ListTasksUseCase,
	listMyUC *task.ListMyTasksUseCase,
) *TaskHandler {
	return &TaskHandler{
		createUC:  createUC,
		updateUC:  updateUC,
		publishUC: publishUC,
		cancelUC:  cancelUC,
		getUC:     getUC,
		listUC:    listUC,
		listMyUC:  listMyUC,
	}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.TaskRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), task.CreateTaskInput{
		RequesterID: userID,
		Params:      req.Params(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTaskResponse(created))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.TaskRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.updateUC.Execute(c.Request.Context(), task.UpdateTaskInput{
		TaskID:      taskID,
		RequesterID: userID,
		Params:      req.Params(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(updated))
}

func (h *TaskHandler) PublishTask(c *gin.Context) {
	h.changeStatus(c, h.publishUC.Execute)
}

func (h *TaskHandler) CancelTask(c *gin.Context) {
	h.changeStatus(c, h.cancelUC.Execute)
}

func (h *TaskHandler) changeStatus(c *gin.Context, run func(ctx context.Context, taskID, requesterID uuid.UUID) (*entity.Task, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := run(c.Request.Context(), taskID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

// GetTask: черновик виден только автору, остальным задача отдаётся без авторизации.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.UserID(c)

	t, err := h.getUC.Execute(c.Request.Context(), taskID, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	list, err := h.listUC.Execute(c.Request.Context(), task.ListTasksInput{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Page:     parsePage(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToTaskResponses(list.Tasks), list.Total, list.Page.Limit, list.Page.Offset)
}

func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.listMyUC.Execute(c.Request.Context(), userID, c.Query("status"), parsePage(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToTaskResponses(list.Tasks), list.Total, list.Page.Limit, list.Page.Offset)
}
