package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/models"
)

// listFilters reads limit and offset; malformed values are rejected by RequestValidation upstream
func listFilters(c *gin.Context) models.ListFilters {
	var filters models.ListFilters
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = offset
	}
	return filters.Normalize()
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.Query(key))
	return err == nil && value
}

func queryTime(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
