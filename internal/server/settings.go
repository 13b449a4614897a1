package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/authz"
	settingsdomain "github.com/agencydesk/agencydesk/internal/settings/domain"
)

func (s *Server) GetSettings(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectSettings, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectSettings, authz.ActionSettingsUpdate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req settingsdomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.Update(c.Request.Context(), principal, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
