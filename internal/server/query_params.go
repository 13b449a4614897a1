package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func parseIDParam(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

// parseOptionalID returns nil when the query parameter is absent.
func parseOptionalID(c *gin.Context, name string) (*snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid "+name))
		return nil, false
	}
	return &id, true
}

func parseOptionalDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		AbortWithError(c, newValidationError(name, "invalid_date", "invalid "+name))
		return nil, false
	}
	return &date, true
}
