package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/services"
)

type KPIHandler struct {
	kpiService *services.KPIService
}

func NewKPIHandler(kpiService *services.KPIService) *KPIHandler {
	return &KPIHandler{
		kpiService: kpiService,
	}
}

// TotalTasks returns a handler counting tasks, all of them when status is
// nil. With ?days=N the count is bucketed per day over the last N days.
func (h *KPIHandler) TotalTasks(status *models.TaskStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Query("days"))
		if raw == "" {
			total, err := h.kpiService.CountTasksByStatus(c.Request.Context(), status)
			if err != nil {
				apierrors.Respond(c, err)
				return
			}

			respondData(c, http.StatusOK, gin.H{"totalTasks": total}, "")
			return
		}

		days, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid days")
			return
		}

		result, err := h.kpiService.CountTasksByStatusPerDay(c.Request.Context(), status, days)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}

		respondData(c, http.StatusOK, result, "")
	}
}
