package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accountdomain "github.com/agencydesk/agencydesk/internal/account/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
)

func (s *Server) ListAccounts(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectAccount, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	clientID, ok := parseOptionalID(c, "client_id")
	if !ok {
		return
	}

	resp, err := s.accountSvc.List(c.Request.Context(), principal, accountdomain.ListAccountsRequest{
		ClientID: clientID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAccount(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectAccount, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.accountSvc.Get(c.Request.Context(), principal, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateAccount(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectAccount, authz.ActionCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req accountdomain.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.Create(c.Request.Context(), principal, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateAccount(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectAccount, authz.ActionUpdate); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req accountdomain.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAccount(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectAccount, authz.ActionDelete); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.accountSvc.Delete(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
