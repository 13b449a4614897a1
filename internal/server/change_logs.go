package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/authz"
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

func (s *Server) ListChangeLogs(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectChangeLog, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	entityID, ok := parseOptionalID(c, "entity_id")
	if !ok {
		return
	}
	clientID, ok := parseOptionalID(c, "client_id")
	if !ok {
		return
	}

	resp, err := s.changeLogSvc.List(c.Request.Context(), principal, changelogdomain.ListEntriesRequest{
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		EntityID:   entityID,
		ClientID:   clientID,
		Page:       page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateChangeLog(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectChangeLog, authz.ActionCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req changelogdomain.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.changeLogSvc.CreateManual(c.Request.Context(), principal, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}
