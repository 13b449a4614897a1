package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/authz"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

func (s *Server) ListNotifications(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectNotification, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		pagination.Pagination
		Unread bool `form:"unread"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.notificationSvc.List(c.Request.Context(), principal, notifdomain.ListNotificationsRequest{
		UnreadOnly: query.Unread,
		Page:       query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.notificationSvc.MarkRead(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"read": true}})
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}

	if err := s.notificationSvc.MarkAllRead(c.Request.Context(), principal); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"read": true}})
}
