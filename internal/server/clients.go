package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/authz"
	clientdomain "github.com/agencydesk/agencydesk/internal/client/domain"
)

func (s *Server) ListClients(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectClient, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.clientSvc.List(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClient(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectClient, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.clientSvc.Get(c.Request.Context(), principal, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateClient(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectClient, authz.ActionCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req clientdomain.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), principal, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateClient(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectClient, authz.ActionUpdate); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req clientdomain.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteClient(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectClient, authz.ActionDelete); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.clientSvc.Delete(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type assignManagerRequest struct {
	UserID snowflake.ID `json:"user_id,string"`
}

func (s *Server) AssignClientManager(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectClient, authz.ActionClientAssignManager); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.clientSvc.AssignManager(c.Request.Context(), principal, id, req.UserID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"assigned": true}})
}

func (s *Server) RemoveClientManager(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectClient, authz.ActionClientAssignManager); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userID")
	if !ok {
		return
	}

	if err := s.clientSvc.RemoveManager(c.Request.Context(), principal, id, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": true}})
}
