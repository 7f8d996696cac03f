package handlers

import (
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

type CommitmentHandler struct {
	commitmentService *services.CommitmentService
	now               func() time.Time
}

func NewCommitmentHandler(commitmentService *services.CommitmentService) *CommitmentHandler {
	return &CommitmentHandler{
		commitmentService: commitmentService,
		now:               time.Now,
	}
}

// commitmentIDRequest is the body of the assign, done and reject actions
type commitmentIDRequest struct {
	CommitmentID uint64 `json:"commitmentId"`
	TaskID       uint64 `json:"taskId"`
}

// ListCommitments returns commitments filtered by task, ONG and status
func (h *CommitmentHandler) ListCommitments(c *gin.Context) {
	var input services.ListCommitmentsInput

	var ok bool
	if input.TaskID, ok = utils.QueryUint64(c, "taskId"); !ok {
		apierrors.BadRequest(c, "Invalid taskId")
		return
	}
	if input.OngID, ok = utils.QueryUint64(c, "ongId"); !ok {
		apierrors.BadRequest(c, "Invalid ongId")
		return
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.CommitmentStatus(raw)
		input.Status = &status
	}

	commitments, err := h.commitmentService.ListCommitments(c.Request.Context(), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToCommitmentDTOs(commitments), "")
}

// ListTaskCommitments returns the commitments proposed for a task
func (h *CommitmentHandler) ListTaskCommitments(c *gin.Context) {
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	commitments, err := h.commitmentService.ListCommitmentsByTask(c.Request.Context(), taskID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToCommitmentDTOs(commitments), "")
}

// ListProjectCommitments returns the commitments of every task in a project
func (h *CommitmentHandler) ListProjectCommitments(c *gin.Context) {
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	commitments, err := h.commitmentService.ListCommitmentsByProject(c.Request.Context(), projectID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToCommitmentDTOs(commitments), "")
}

// CreateCommitment records an ONG's proposal to fulfill a task
func (h *CommitmentHandler) CreateCommitment(c *gin.Context) {
	var req struct {
		TaskID      uint64                  `json:"taskId"`
		OngID       uint64                  `json:"ongId"`
		Status      models.CommitmentStatus `json:"status"`
		Description *string                 `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}

	commitment, err := h.commitmentService.CreateCommitment(c.Request.Context(), services.CreateCommitmentInput{
		TaskID:      req.TaskID,
		OngID:       req.OngID,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToCommitmentDTO(*commitment), "Commitment created successfully")
}

// AssignCommitment approves a commitment for its task
func (h *CommitmentHandler) AssignCommitment(c *gin.Context) {
	var req commitmentIDRequest
	if !bindJSON(c, &req) {
		return
	}

	commitment, err := h.commitmentService.AssignCommitment(c.Request.Context(), req.CommitmentID, req.TaskID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToCommitmentDTO(*commitment), "Commitment assigned successfully")
}

// MarkCommitmentDone completes a commitment together with its task
func (h *CommitmentHandler) MarkCommitmentDone(c *gin.Context) {
	var req commitmentIDRequest
	if !bindJSON(c, &req) {
		return
	}

	commitment, task, err := h.commitmentService.MarkCommitmentDone(c.Request.Context(), req.CommitmentID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.CommitmentDoneDTO{
		Commitment: dto.ToCommitmentDTO(*commitment),
		Task:       dto.ToTaskDTO(*task, h.now()),
	}, "Commitment and task marked as done")
}

// RejectCommitment rejects a proposed commitment
func (h *CommitmentHandler) RejectCommitment(c *gin.Context) {
	var req commitmentIDRequest
	if !bindJSON(c, &req) {
		return
	}

	commitment, err := h.commitmentService.RejectCommitment(c.Request.Context(), req.CommitmentID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToCommitmentDTO(*commitment), "Commitment rejected")
}
