package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/authz"
	campaigndomain "github.com/agencydesk/agencydesk/internal/campaign/domain"
)

func (s *Server) ListCampaigns(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	clientID, ok := parseOptionalID(c, "client_id")
	if !ok {
		return
	}
	websiteID, ok := parseOptionalID(c, "website_id")
	if !ok {
		return
	}

	resp, err := s.campaignSvc.List(c.Request.Context(), principal, campaigndomain.ListCampaignsRequest{
		ClientID:  clientID,
		WebsiteID: websiteID,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCampaign(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.campaignSvc.Get(c.Request.Context(), principal, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCampaign(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req campaigndomain.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.Create(c.Request.Context(), principal, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCampaign(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionUpdate); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req campaigndomain.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) ChangeCampaignStatus(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionCampaignStatus); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.ChangeStatus(c.Request.Context(), principal, id, strings.TrimSpace(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCampaign(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionDelete); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.campaignSvc.Delete(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type assignContributorRequest struct {
	UserID snowflake.ID `json:"user_id,string"`
}

func (s *Server) AssignCampaignContributor(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionCampaignAssignContributor); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.campaignSvc.AssignContributor(c.Request.Context(), principal, id, req.UserID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"assigned": true}})
}

func (s *Server) RemoveCampaignContributor(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectCampaign, authz.ActionCampaignAssignContributor); err != nil {
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

	if err := s.campaignSvc.RemoveContributor(c.Request.Context(), principal, id, userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": true}})
}
