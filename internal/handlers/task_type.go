package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/dto"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/services"
)

type TaskTypeHandler struct {
	taskTypeService *services.TaskTypeService
}

func NewTaskTypeHandler(taskTypeService *services.TaskTypeService) *TaskTypeHandler {
	return &TaskTypeHandler{
		taskTypeService: taskTypeService,
	}
}

type taskTypeRequest struct {
	Title string `json:"title"`
}

// ListTaskTypes returns all task types
func (h *TaskTypeHandler) ListTaskTypes(c *gin.Context) {
	taskTypes, err := h.taskTypeService.ListTaskTypes(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskTypeDTOs(taskTypes), "")
}

// GetTaskType returns a task type by ID
func (h *TaskTypeHandler) GetTaskType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	taskType, err := h.taskTypeService.GetTaskType(c.Request.Context(), id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskTypeDTO(*taskType), "")
}

// CreateTaskType creates a task type
func (h *TaskTypeHandler) CreateTaskType(c *gin.Context) {
	var req taskTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	taskType, err := h.taskTypeService.CreateTaskType(c.Request.Context(), req.Title)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToTaskTypeDTO(*taskType), "Task type created successfully")
}

// UpdateTaskType renames a task type
func (h *TaskTypeHandler) UpdateTaskType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req taskTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	taskType, err := h.taskTypeService.UpdateTaskType(c.Request.Context(), id, req.Title)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskTypeDTO(*taskType), "Task type updated successfully")
}

// DeleteTaskType deletes an unreferenced task type
func (h *TaskTypeHandler) DeleteTaskType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskTypeService.DeleteTaskType(c.Request.Context(), id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, nil, "Task type deleted successfully")
}

// MigrateTaskTypes inserts the built-in task types that are missing
func (h *TaskTypeHandler) MigrateTaskTypes(c *gin.Context) {
	result, err := h.taskTypeService.EnsureDefaultTaskTypes(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"created":   result.Created,
		"existing":  result.Existing,
		"taskTypes": dto.ToTaskTypeDTOs(result.Types),
	}, "Task types migrated successfully")
}
