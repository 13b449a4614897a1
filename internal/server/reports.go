package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/authz"
	reportdomain "github.com/agencydesk/agencydesk/internal/report/domain"
)

func (s *Server) DashboardStats(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.Dashboard(c.Request.Context(), principal)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) HoursByClient(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectReport, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	rng, ok := s.parseDateRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.HoursByClient(c.Request.Context(), principal, rng)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ExportHoursByClient streams the same report as CSV for spreadsheet import.
func (s *Server) ExportHoursByClient(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectReport, authz.ActionReportExport); err != nil {
		AbortWithError(c, err)
		return
	}
	rng, ok := s.parseDateRange(c)
	if !ok {
		return
	}

	rows, err := s.reportSvc.HoursByClient(c.Request.Context(), principal, rng)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="hours-by-client.csv"`)
	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"client", "hours", "entries"})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.ClientName,
			fmt.Sprintf("%.2f", row.Hours),
			strconv.FormatInt(row.Entries, 10),
		})
	}
	writer.Flush()
}

func (s *Server) HoursByCampaign(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectReport, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	clientID, ok := parseOptionalID(c, "client_id")
	if !ok {
		return
	}
	rng, ok := s.parseDateRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.HoursByCampaign(c.Request.Context(), principal, clientID, rng)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) HoursByUser(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectReport, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	rng, ok := s.parseDateRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.HoursByUser(c.Request.Context(), principal, rng)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) HoursByMonth(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	if err := s.authzSvc.Require(principal, authz.ObjectReport, authz.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	clientID, ok := parseOptionalID(c, "client_id")
	if !ok {
		return
	}

	months := 12
	if raw := strings.TrimSpace(c.Query("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("months", "invalid_months", "invalid months"))
			return
		}
		months = parsed
	}

	resp, err := s.reportSvc.HoursByMonth(c.Request.Context(), principal, clientID, months)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MyHours(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	rng, ok := s.parseDateRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.MyHours(c.Request.Context(), principal, rng)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ClientSummary(c *gin.Context) {
	principal, ok := s.mustPrincipal(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.reportSvc.ClientSummary(c.Request.Context(), principal, clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) parseDateRange(c *gin.Context) (reportdomain.DateRange, bool) {
	from, ok := parseOptionalDate(c, "from")
	if !ok {
		return reportdomain.DateRange{}, false
	}
	to, ok := parseOptionalDate(c, "to")
	if !ok {
		return reportdomain.DateRange{}, false
	}
	return reportdomain.DateRange{From: from, To: to}, true
}
