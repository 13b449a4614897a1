package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
	clientdomain "github.com/agencydesk/agencydesk/internal/client/domain"
	"github.com/agencydesk/agencydesk/internal/report/domain"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("report.service"),
	}
}

func (s *Service) Dashboard(ctx context.Context, actor authdomain.Principal) (domain.DashboardStats, error) {
	var stats domain.DashboardStats

	err := s.db.WithContext(ctx).
		Table("clients").
		Scopes(authz.ClientScope(actor)).
		Where("clients.status = ?", "active").
		Count(&stats.Clients).Error
	if err != nil {
		return domain.DashboardStats{}, err
	}

	// Campaign visibility for managers runs through client_managers, never
	// through account ownership.
	statusRows := []struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}{}
	err = s.db.WithContext(ctx).
		Table("campaigns").
		Select("campaigns.status, COUNT(*) AS count").
		Scopes(authz.CampaignScope(actor)).
		Group("campaigns.status").
		Find(&statusRows).Error
	if err != nil {
		return domain.DashboardStats{}, err
	}
	for _, row := range statusRows {
		switch row.Status {
		case "active":
			stats.CampaignStatus.Active = row.Count
		case "paused":
			stats.CampaignStatus.Paused = row.Count
		case "completed":
			stats.CampaignStatus.Completed = row.Count
		}
	}
	stats.ActiveCampaigns = stats.CampaignStatus.Active

	monthStart := startOfMonth(time.Now().UTC())
	var hours *float64
	err = s.db.WithContext(ctx).
		Table("time_entries").
		Select("SUM(time_entries.hours)").
		Scopes(authz.TimeEntryScope(actor)).
		Where("time_entries.date >= ?", monthStart).
		Scan(&hours).Error
	if err != nil {
		return domain.DashboardStats{}, err
	}
	if hours != nil {
		stats.HoursThisMonth = *hours
	}

	err = s.db.WithContext(ctx).
		Table("notifications").
		Where("user_id = ? AND read = FALSE", actor.ID).
		Count(&stats.UnreadNotifications).Error
	if err != nil {
		return domain.DashboardStats{}, err
	}

	return stats, nil
}

func (s *Service) HoursByClient(ctx context.Context, actor authdomain.Principal, rng domain.DateRange) ([]domain.ClientHours, error) {
	var rows []domain.ClientHours
	err := s.db.WithContext(ctx).
		Table("time_entries").
		Select("time_entries.client_id, clients.name AS client_name, SUM(time_entries.hours) AS hours, COUNT(*) AS entries").
		Joins("JOIN clients ON clients.id = time_entries.client_id").
		Scopes(authz.TimeEntryScope(actor), dateRange(rng)).
		Group("time_entries.client_id, clients.name").
		Order("hours desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) HoursByCampaign(ctx context.Context, actor authdomain.Principal, clientID *snowflake.ID, rng domain.DateRange) ([]domain.CampaignHours, error) {
	var rows []domain.CampaignHours
	stmt := s.db.WithContext(ctx).
		Table("time_entries").
		Select(`time_entries.campaign_id, campaigns.name AS campaign_name, clients.name AS client_name,
		        campaigns.status, SUM(time_entries.hours) AS hours, COUNT(*) AS entries`).
		Joins("JOIN campaigns ON campaigns.id = time_entries.campaign_id").
		Joins("JOIN clients ON clients.id = time_entries.client_id").
		Scopes(authz.TimeEntryScope(actor), dateRange(rng))
	if clientID != nil {
		stmt = stmt.Where("time_entries.client_id = ?", *clientID)
	}
	err := stmt.
		Group("time_entries.campaign_id, campaigns.name, clients.name, campaigns.status").
		Order("hours desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) HoursByUser(ctx context.Context, actor authdomain.Principal, rng domain.DateRange) ([]domain.UserHours, error) {
	var rows []domain.UserHours
	err := s.db.WithContext(ctx).
		Table("time_entries").
		Select("time_entries.user_id, users.name AS user_name, users.role, SUM(time_entries.hours) AS hours, COUNT(*) AS entries").
		Joins("JOIN users ON users.id = time_entries.user_id").
		Scopes(authz.TimeEntryScope(actor), dateRange(rng)).
		Group("time_entries.user_id, users.name, users.role").
		Order("hours desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) HoursByMonth(ctx context.Context, actor authdomain.Principal, clientID *snowflake.ID, months int) ([]domain.MonthlyHours, error) {
	if months <= 0 || months > 36 {
		months = 12
	}
	since := startOfMonth(time.Now().UTC()).AddDate(0, -(months - 1), 0)

	var rows []domain.MonthlyHours
	stmt := s.db.WithContext(ctx).
		Table("time_entries").
		Select("to_char(time_entries.date, 'YYYY-MM') AS month, SUM(time_entries.hours) AS hours").
		Scopes(authz.TimeEntryScope(actor)).
		Where("time_entries.date >= ?", since)
	if clientID != nil {
		stmt = stmt.Where("time_entries.client_id = ?", *clientID)
	}
	err := stmt.
		Group("month").
		Order("month asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) MyHours(ctx context.Context, actor authdomain.Principal, rng domain.DateRange) (domain.MyHoursSummary, error) {
	var summary domain.MyHoursSummary
	err := s.db.WithContext(ctx).
		Table("time_entries").
		Select(`time_entries.campaign_id, campaigns.name AS campaign_name, clients.name AS client_name,
		        campaigns.status, SUM(time_entries.hours) AS hours, COUNT(*) AS entries`).
		Joins("JOIN campaigns ON campaigns.id = time_entries.campaign_id").
		Joins("JOIN clients ON clients.id = time_entries.client_id").
		Where("time_entries.user_id = ?", actor.ID).
		Scopes(dateRange(rng)).
		Group("time_entries.campaign_id, campaigns.name, clients.name, campaigns.status").
		Order("hours desc").
		Find(&summary.ByCampaign).Error
	if err != nil {
		return domain.MyHoursSummary{}, err
	}
	for _, row := range summary.ByCampaign {
		summary.TotalHours += row.Hours
		summary.Entries += row.Entries
	}
	return summary, nil
}

func (s *Service) ClientSummary(ctx context.Context, actor authdomain.Principal, clientID snowflake.ID) (domain.ClientSummary, error) {
	if actor.Role == authdomain.RoleContributor {
		return domain.ClientSummary{}, authz.ErrForbidden
	}

	// Out-of-scope and nonexistent clients answer identically.
	var client struct {
		ID   snowflake.ID `gorm:"column:id"`
		Name string       `gorm:"column:name"`
	}
	err := s.db.WithContext(ctx).
		Table("clients").
		Select("clients.id, clients.name").
		Scopes(authz.ClientScope(actor)).
		Where("clients.id = ?", clientID).
		Take(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ClientSummary{}, clientdomain.ErrNotFound
	}
	if err != nil {
		return domain.ClientSummary{}, err
	}

	summary := domain.ClientSummary{ClientID: client.ID, ClientName: client.Name}

	err = s.db.WithContext(ctx).
		Table("time_entries").
		Select(`time_entries.campaign_id, campaigns.name AS campaign_name, clients.name AS client_name,
		        campaigns.status, SUM(time_entries.hours) AS hours, COUNT(*) AS entries`).
		Joins("JOIN campaigns ON campaigns.id = time_entries.campaign_id").
		Joins("JOIN clients ON clients.id = time_entries.client_id").
		Where("time_entries.client_id = ?", clientID).
		Group("time_entries.campaign_id, campaigns.name, clients.name, campaigns.status").
		Order("hours desc").
		Find(&summary.ByCampaign).Error
	if err != nil {
		return domain.ClientSummary{}, err
	}
	for _, row := range summary.ByCampaign {
		summary.TotalHours += row.Hours
	}

	err = s.db.WithContext(ctx).
		Table("campaigns").
		Select("campaigns.id, campaigns.name, campaigns.status").
		Where("campaigns.client_id = ? AND campaigns.status <> ?", clientID, "completed").
		Order("campaigns.name asc").
		Find(&summary.OpenCampaigns).Error
	if err != nil {
		return domain.ClientSummary{}, err
	}

	err = s.db.WithContext(ctx).
		Table("time_entries").
		Select("time_entries.user_id, users.name AS user_name, users.role, SUM(time_entries.hours) AS hours").
		Joins("JOIN users ON users.id = time_entries.user_id").
		Where("time_entries.client_id = ? AND users.status = ?", clientID, "active").
		Group("time_entries.user_id, users.name, users.role").
		Order("hours desc").
		Find(&summary.Team).Error
	if err != nil {
		return domain.ClientSummary{}, err
	}

	return summary, nil
}

func dateRange(rng domain.DateRange) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if rng.From != nil {
			tx = tx.Where("time_entries.date >= ?", *rng.From)
		}
		if rng.To != nil {
			tx = tx.Where("time_entries.date <= ?", *rng.To)
		}
		return tx
	}
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
