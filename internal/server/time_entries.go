package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/authz"
	timeentrydomain "github.com/agencydesk/agencydesk/internal/timeentry/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

func (s *Server) ListTimeEntries(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectTimeEntry, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	userID, ok := parseOptionalID(c, "user_id")
	if !ok {
		return
	}
	campaignID, ok := parseOptionalID(c, "campaign_id")
	if !ok {
		return
	}
	clientID, ok := parseOptionalID(c, "client_id")
	if !ok {
		return
	}
	from, ok := parseOptionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := parseOptionalDate(c, "to")
	if !ok {
		return
	}

	resp, err := s.timeEntrySvc.List(c.Request.Context(), principal, timeentrydomain.ListEntriesRequest{
		UserID:     userID,
		CampaignID: campaignID,
		ClientID:   clientID,
		From:       from,
		To:         to,
		Page:       page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTimeEntry(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectTimeEntry, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.timeEntrySvc.Get(c.Request.Context(), principal, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateTimeEntry(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectTimeEntry, authz.ActionCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req timeentrydomain.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.Create(c.Request.Context(), principal, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateTimeEntry(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectTimeEntry, authz.ActionUpdate); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req timeentrydomain.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTimeEntry(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectTimeEntry, authz.ActionDelete); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.timeEntrySvc.Delete(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
