package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/dto"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/services"
	"github.com/projectplanning/planning-cloud-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	now         func() time.Time
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		now:         time.Now,
	}
}

// taskRequest is the body of task creation, single and bulk
type taskRequest struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Status            models.TaskStatus `json:"status"`
	DueDate           *utils.Date       `json:"dueDate"`
	EstimatedHours    *float64          `json:"estimatedHours"`
	ActualHours       *float64          `json:"actualHours"`
	ProjectID         *uint64           `json:"projectId"`
	TakenBy           *uint64           `json:"takenBy"`
	CreatedBy         *uint64           `json:"createdBy"`
	TaskTypeID        uint64            `json:"taskTypeId"`
	IsCoverageRequest *bool             `json:"isCoverageRequest"`
}

func (r taskRequest) toInput() services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:             r.Title,
		Description:       r.Description,
		Status:            r.Status,
		DueDate:           r.DueDate.Ptr(),
		EstimatedHours:    r.EstimatedHours,
		ActualHours:       r.ActualHours,
		ProjectID:         r.ProjectID,
		TakenBy:           r.TakenBy,
		CreatedBy:         r.CreatedBy,
		TaskTypeID:        r.TaskTypeID,
		IsCoverageRequest: r.IsCoverageRequest,
	}
}

// updateTaskRequest is the body of PUT/PATCH /tasks/:id. Absent fields are
// left untouched; dueDate: null clears the due date.
type updateTaskRequest struct {
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	Status            *models.TaskStatus `json:"status"`
	DueDate           utils.OptionalDate `json:"dueDate"`
	EstimatedHours    *float64           `json:"estimatedHours"`
	ActualHours       *float64           `json:"actualHours"`
	ProjectID         *uint64            `json:"projectId"`
	TakenBy           *uint64            `json:"takenBy"`
	TaskTypeID        *uint64            `json:"taskTypeId"`
	IsCoverageRequest *bool              `json:"isCoverageRequest"`
}

// ListTasks returns tasks filtered by status, project, collaborator, type
// and coverage flag
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input, ok := parseTaskFilters(c)
	if !ok {
		return
	}

	projectID, ok := utils.QueryUint64(c, "projectId")
	if !ok {
		apierrors.BadRequest(c, "Invalid projectId")
		return
	}
	input.ProjectID = projectID

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondPage(c, dto.ToTaskDTOs(tasks, h.now()), params, total)
}

// ListProjectTasks returns the tasks of a project
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	input, ok := parseTaskFilters(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasksByProject(c.Request.Context(), projectID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondPage(c, dto.ToTaskDTOs(tasks, h.now()), params, total)
}

// ListUnassignedProjectTasks returns the tasks of a project without an
// approved commitment
func (h *TaskHandler) ListUnassignedProjectTasks(c *gin.Context) {
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	input, ok := parseTaskFilters(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListUnassignedTasksByProject(c.Request.Context(), projectID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondPage(c, dto.ToTaskDTOs(tasks, h.now()), params, total)
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskDTO(*task, h.now()), "")
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), req.toInput())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToTaskDTO(*task, h.now()), "Task created successfully")
}

// CreateTasksBulk creates several tasks at once; either all rows are stored
// or none
func (h *TaskHandler) CreateTasksBulk(c *gin.Context) {
	var req struct {
		Tasks []taskRequest `json:"tasks"`
	}
	if !bindJSON(c, &req) {
		return
	}

	inputs := make([]services.CreateTaskInput, len(req.Tasks))
	for i, t := range req.Tasks {
		inputs[i] = t.toInput()
	}

	tasks, err := h.taskService.CreateTasksBulk(c.Request.Context(), inputs)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, apierrors.Envelope{
		Success: true,
		Data:    dto.ToTaskDTOs(tasks, h.now()),
		Message: fmt.Sprintf("%d tasks created successfully", len(tasks)),
	})
}

// DraftTasks extracts task drafts from free text without storing them
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, drafts, "")
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		Title:             req.Title,
		Description:       req.Description,
		Status:            req.Status,
		EstimatedHours:    req.EstimatedHours,
		ActualHours:       req.ActualHours,
		ProjectID:         req.ProjectID,
		TakenBy:           req.TakenBy,
		TaskTypeID:        req.TaskTypeID,
		IsCoverageRequest: req.IsCoverageRequest,
	}
	if req.DueDate.Set {
		input.DueDate = req.DueDate.Value
		input.ClearDueDate = req.DueDate.Value == nil
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskDTO(*task, h.now()), "Task updated successfully")
}

// UpdateTaskStatus sets the status of a task
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.TaskStatus `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTaskStatus(c.Request.Context(), taskID, req.Status)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskDTO(*task, h.now()), "Task status updated successfully")
}

// DeleteTask deletes a task with its commitments and observations
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, nil, "Task deleted successfully")
}

// parseTaskFilters reads the list filters shared by the task listings
func parseTaskFilters(c *gin.Context) (services.ListTasksInput, bool) {
	var input services.ListTasksInput

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.TaskStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return input, false
		}
		input.Status = &status
	}

	var ok bool
	if input.TakenBy, ok = utils.QueryUint64(c, "takenBy"); !ok {
		apierrors.BadRequest(c, "Invalid takenBy")
		return input, false
	}
	if input.TaskTypeID, ok = utils.QueryUint64(c, "taskTypeId"); !ok {
		apierrors.BadRequest(c, "Invalid taskTypeId")
		return input, false
	}
	if input.IsCoverageRequest, ok = utils.QueryBool(c, "isCoverageRequest"); !ok {
		apierrors.BadRequest(c, "Invalid isCoverageRequest")
		return input, false
	}

	for _, include := range strings.Split(c.Query("include"), ",") {
		switch strings.TrimSpace(include) {
		case "commitments":
			input.IncludeCommitments = true
		case "observations":
			input.IncludeObservations = true
		}
	}

	return input, true
}
