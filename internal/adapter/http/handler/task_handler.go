package handler

import (
	"net/http"

	. "taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/adapter/http/middleware"
	. "taskmanager/internal/adapter/http/validation"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/model/response"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/util"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type TaskHandler struct {
	svc    port.TaskService
	Logger *config.Logger
}

func NewTaskHandler(taskService port.TaskService, logger *config.Logger) *TaskHandler {
	return &TaskHandler{
		svc:    taskService,
		Logger: logger,
	}
}

func (h *TaskHandler) List(c *gin.Context) {
	span := startSpan(c, "handler.task.List", "List")
	defer span.End()

	query, err := util.BindQuery[request.ListTasksQuery](c)
	if err != nil {
		SendBadRequestError(c, "query", "Invalid query parameters")
		return
	}

	if err := Validator.Struct(query); err != nil {
		SendValidationError(c, err)
		return
	}

	filters := domain.TaskFilters{UserID: middleware.CurrentUserID(c)}

	if query.Status != "" {
		status, err := domain.ParseTaskStatus(query.Status)
		if err != nil {
			SendDomainError(c, err)
			return
		}

		filters.Status = &status
	}

	pagination := pageFromQuery(query)

	span.SetAttributes(
		attribute.Int("task.limit", pagination.Limit),
		attribute.Int("task.offset", pagination.Offset),
	)

	connection, err := h.svc.List(c.Request.Context(), filters, pagination)
	if err != nil {
		fail(c, span, h.Logger, "Failed to list tasks", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskConnectionResponse(connection))
}

func (h *TaskHandler) Create(c *gin.Context) {
	span := startSpan(c, "handler.task.Create", "Create")
	defer span.End()

	params, err := util.BindJSON[request.CreateTaskRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	status, err := domain.ParseTaskStatus(params.Status)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	task, err := h.svc.Create(c.Request.Context(), port.CreateTaskInput{
		Title:       params.Title,
		Description: params.Description,
		Status:      status,
		UserID:      middleware.CurrentUserID(c),
	})

	if err != nil {
		fail(c, span, h.Logger, "Failed to create task", err)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))

	SendSuccess(c, http.StatusCreated, response.NewTaskResponse(task))
}

func (h *TaskHandler) Get(c *gin.Context) {
	span := startSpan(c, "handler.task.Get", "Get")
	defer span.End()

	task, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, span, h.Logger, "Failed to get task", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskResponse(task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	span := startSpan(c, "handler.task.Update", "Update")
	defer span.End()

	params, err := util.BindJSON[request.UpdateTaskRequest](c)
	if err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	patch := domain.TaskPatch{
		Title:          params.Title,
		Description:    params.Description.Value,
		DescriptionSet: params.Description.Set,
	}

	if params.Status != nil {
		status, err := domain.ParseTaskStatus(*params.Status)
		if err != nil {
			SendDomainError(c, err)
			return
		}

		patch.Status = &status
	}

	task, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), patch)
	if err != nil {
		fail(c, span, h.Logger, "Failed to update task", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	span := startSpan(c, "handler.task.Delete", "Delete")
	defer span.End()

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		fail(c, span, h.Logger, "Failed to delete task", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// pageFromQuery defaults a missing limit and clamps it to [1, MaxPageSize].
// Negative offsets start from the beginning.
func pageFromQuery(query request.ListTasksQuery) domain.Pagination {
	limit := DefaultPageSize

	if query.Limit != nil {
		limit = min(max(*query.Limit, 1), MaxPageSize)
	}

	return domain.Pagination{
		Limit:  limit,
		Offset: max(query.Offset, 0),
	}
}
