package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/database"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Health reports liveness together with database reachability
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	data := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"database":  "ok",
	}

	if err := database.Ping(ctx, h.db); err != nil {
		data["status"] = "degraded"
		data["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, apierrors.Envelope{
			Success: false,
			Data:    data,
			Message: "Database unreachable",
			Error:   &apierrors.APIError{Code: apierrors.ErrCodeServiceUnavailable},
		})
		return
	}

	respondData(c, http.StatusOK, data, "API is running")
}
