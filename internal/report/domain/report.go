package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

type DateRange struct {
	From *time.Time
	To   *time.Time
}

type ClientHours struct {
	ClientID   snowflake.ID `json:"client_id"`
	ClientName string       `json:"client_name"`
	Hours      float64      `json:"hours"`
	Entries    int64        `json:"entries"`
}

type CampaignHours struct {
	CampaignID   snowflake.ID `json:"campaign_id"`
	CampaignName string       `json:"campaign_name"`
	ClientName   string       `json:"client_name"`
	Status       string       `json:"status"`
	Hours        float64      `json:"hours"`
	Entries      int64        `json:"entries"`
}

type UserHours struct {
	UserID   snowflake.ID `json:"user_id"`
	UserName string       `json:"user_name"`
	Role     string       `json:"role"`
	Hours    float64      `json:"hours"`
	Entries  int64        `json:"entries"`
}

type MonthlyHours struct {
	Month string  `json:"month"`
	Hours float64 `json:"hours"`
}

type MyHoursSummary struct {
	TotalHours float64         `json:"total_hours"`
	Entries    int64           `json:"entries"`
	ByCampaign []CampaignHours `json:"by_campaign"`
}

type CampaignBrief struct {
	ID     snowflake.ID `json:"id"`
	Name   string       `json:"name"`
	Status string       `json:"status"`
}

type TeamMember struct {
	UserID   snowflake.ID `json:"user_id"`
	UserName string       `json:"user_name"`
	Role     string       `json:"role"`
	Hours    float64      `json:"hours"`
}

// ClientSummary backs the per-client overview page: lifetime hours, the
// campaigns still in flight, and the staff who have logged work there.
type ClientSummary struct {
	ClientID      snowflake.ID    `json:"client_id"`
	ClientName    string          `json:"client_name"`
	TotalHours    float64         `json:"total_hours"`
	ByCampaign    []CampaignHours `json:"by_campaign"`
	OpenCampaigns []CampaignBrief `json:"open_campaigns"`
	Team          []TeamMember    `json:"team"`
}

type CampaignStatusBreakdown struct {
	Active    int64 `json:"active"`
	Paused    int64 `json:"paused"`
	Completed int64 `json:"completed"`
}

// DashboardStats is shaped by role: an owner sees agency-wide numbers, a
// manager only their assigned clients, a contributor their own work, and a
// portal user their client.
type DashboardStats struct {
	Clients             int64                   `json:"clients"`
	ActiveCampaigns     int64                   `json:"active_campaigns"`
	HoursThisMonth      float64                 `json:"hours_this_month"`
	UnreadNotifications int64                   `json:"unread_notifications"`
	CampaignStatus      CampaignStatusBreakdown `json:"campaign_status"`
}

type Service interface {
	Dashboard(ctx context.Context, actor authdomain.Principal) (DashboardStats, error)
	HoursByClient(ctx context.Context, actor authdomain.Principal, rng DateRange) ([]ClientHours, error)
	HoursByCampaign(ctx context.Context, actor authdomain.Principal, clientID *snowflake.ID, rng DateRange) ([]CampaignHours, error)
	HoursByUser(ctx context.Context, actor authdomain.Principal, rng DateRange) ([]UserHours, error)
	HoursByMonth(ctx context.Context, actor authdomain.Principal, clientID *snowflake.ID, months int) ([]MonthlyHours, error)
	MyHours(ctx context.Context, actor authdomain.Principal, rng DateRange) (MyHoursSummary, error)
	ClientSummary(ctx context.Context, actor authdomain.Principal, clientID snowflake.ID) (ClientSummary, error)
}
