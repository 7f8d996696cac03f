package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/dto"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/services"
	"github.com/projectplanning/planning-cloud-api/internal/utils"
)

type ObservationHandler struct {
	observationService *services.ObservationService
}

func NewObservationHandler(observationService *services.ObservationService) *ObservationHandler {
	return &ObservationHandler{
		observationService: observationService,
	}
}

// CreateObservation appends an observation to a task in progress
func (h *ObservationHandler) CreateObservation(c *gin.Context) {
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	var req struct {
		Observations string  `json:"observations"`
		UserID       *uint64 `json:"userId"`
		BonitaCaseID *int64  `json:"bonitaCaseId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	observation, err := h.observationService.CreateObservation(c.Request.Context(), services.CreateObservationInput{
		TaskID:       taskID,
		Observations: req.Observations,
		CreatedBy:    req.UserID,
		BonitaCaseID: req.BonitaCaseID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToObservationDTO(*observation), "Observation added successfully")
}

// ResolveObservation records the resolution of an observation
func (h *ObservationHandler) ResolveObservation(c *gin.Context) {
	observationID, ok := pathID(c, "observationId")
	if !ok {
		return
	}

	var req struct {
		Resolution string  `json:"resolution"`
		UserID     *uint64 `json:"userId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	observation, err := h.observationService.ResolveObservation(c.Request.Context(), services.ResolveObservationInput{
		ObservationID: observationID,
		Resolution:    req.Resolution,
		ResolvedBy:    req.UserID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToObservationDTO(*observation), "Observation resolved successfully")
}

// ListTaskObservations returns the observations of a task, newest first.
// ?resolved=true|false narrows to resolved or open observations.
func (h *ObservationHandler) ListTaskObservations(c *gin.Context) {
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	resolved, ok := utils.QueryBool(c, "resolved")
	if !ok {
		apierrors.BadRequest(c, "Invalid resolved")
		return
	}

	params := utils.GetPaginationParams(c)
	observations, total, err := h.observationService.ListObservationsByTask(c.Request.Context(), services.ListObservationsInput{
		TaskID:   taskID,
		Resolved: resolved,
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondPage(c, dto.ToObservationDTOs(observations), params, total)
}
