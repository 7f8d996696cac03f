package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/utils"
)

// respondData sends a success envelope
func respondData(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, apierrors.Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// respondPage sends a success envelope with pagination metadata
func respondPage(c *gin.Context, data interface{}, params utils.PaginationParams, total int64) {
	c.JSON(http.StatusOK, apierrors.Envelope{
		Success:    true,
		Data:       data,
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return false
	}
	return true
}

// pathID parses a numeric path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, ok := utils.ParseIDParam(c, name)
	if !ok {
		apierrors.BadRequest(c, "Invalid "+name)
	}
	return id, ok
}
