package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseIDParam parses a positive numeric path parameter.
func ParseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// QueryUint64 parses an optional numeric query parameter. The second return
// value is false when the parameter is present but malformed.
func QueryUint64(c *gin.Context, name string) (*uint64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// QueryBool parses an optional true/false query parameter.
func QueryBool(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}
