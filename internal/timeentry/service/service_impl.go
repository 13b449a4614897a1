package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
	campaigndomain "github.com/agencydesk/agencydesk/internal/campaign/domain"
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/internal/timeentry/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ChangeLogSvc changelogdomain.Service
	NotifSvc     notifdomain.Service
	NotifRepo    notifdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	changeLogSvc changelogdomain.Service
	notifSvc     notifdomain.Service
	notifRepo    notifdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("timeentry.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		changeLogSvc: p.ChangeLogSvc,
		notifSvc:     p.NotifSvc,
		notifRepo:    p.NotifRepo,
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal, req domain.ListEntriesRequest) (domain.ListEntriesResponse, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		tx = authz.TimeEntryScope(actor)(tx)
		if req.UserID != nil {
			tx = tx.Where("time_entries.user_id = ?", *req.UserID)
		}
		if req.CampaignID != nil {
			tx = tx.Where("time_entries.campaign_id = ?", *req.CampaignID)
		}
		if req.ClientID != nil {
			tx = tx.Where("time_entries.client_id = ?", *req.ClientID)
		}
		if req.From != nil {
			tx = tx.Where("time_entries.date >= ?", *req.From)
		}
		if req.To != nil {
			tx = tx.Where("time_entries.date <= ?", *req.To)
		}
		return tx
	}

	entries, err := s.repo.List(ctx, s.db, scope, req.Page)
	if err != nil {
		return domain.ListEntriesResponse{}, err
	}
	total, err := s.repo.SumHours(ctx, s.db, scope)
	if err != nil {
		return domain.ListEntriesResponse{}, err
	}

	entries, pageInfo := pagination.BuildPageInfo(entries, req.Page.PageSize, func(e *domain.EntryDetail) pagination.Cursor {
		return pagination.Cursor{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		}
	})
	return domain.ListEntriesResponse{PageInfo: pageInfo, Entries: entries, TotalHours: total}, nil
}

func (s *Service) Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.TimeEntry, error) {
	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}

	var count int64
	err = s.db.WithContext(ctx).
		Table("time_entries").
		Scopes(authz.TimeEntryScope(actor)).
		Where("time_entries.id = ?", id).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// Create rejects completed campaigns for every role, the owner included.
func (s *Service) Create(ctx context.Context, actor authdomain.Principal, req domain.CreateEntryRequest) (domain.TimeEntry, error) {
	if err := validateHours(req.Hours); err != nil {
		return domain.TimeEntry{}, err
	}
	description := strings.TrimSpace(req.Description)
	if len(description) < domain.MinDescriptionLen {
		return domain.TimeEntry{}, domain.ErrDescriptionTooShort
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.TimeEntry{}, err
	}

	var campaign struct {
		ID        snowflake.ID `gorm:"column:id"`
		ClientID  snowflake.ID `gorm:"column:client_id"`
		WebsiteID snowflake.ID `gorm:"column:website_id"`
		Status    string       `gorm:"column:status"`
	}
	err = s.db.WithContext(ctx).
		Table("campaigns").
		Select("campaigns.id, campaigns.client_id, campaigns.website_id, campaigns.status").
		Scopes(authz.CampaignScope(actor)).
		Where("campaigns.id = ?", req.CampaignID).
		Scan(&campaign).Error
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if campaign.ID == 0 {
		return domain.TimeEntry{}, domain.ErrCampaignNotFound
	}
	if campaign.Status == campaigndomain.StatusCompleted {
		return domain.TimeEntry{}, domain.ErrCampaignCompleted
	}

	now := time.Now().UTC()
	entry := domain.TimeEntry{
		ID:          s.genID.Generate(),
		UserID:      actor.ID,
		CampaignID:  campaign.ID,
		ClientID:    campaign.ClientID,
		WebsiteID:   campaign.WebsiteID,
		Date:        date,
		Hours:       req.Hours,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.TimeEntry{}, err
	}

	hours := formatHours(entry.Hours)
	s.changeLogSvc.RecordSystem(ctx, changelogdomain.EntityCampaign, campaign.ID, campaign.ClientID,
		fmt.Sprintf("%s hours logged by %s", hours, actor.Name),
		fmt.Sprintf("%s hours logged by %s on %s: %s", hours, actor.Name, entry.Date.Format(dateLayout), entry.Description))

	s.notifyLogged(ctx, actor, entry)
	return entry, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req domain.UpdateEntryRequest) (domain.TimeEntry, error) {
	entry, err := s.Get(ctx, actor, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if err := s.editable(actor, entry); err != nil {
		return domain.TimeEntry{}, err
	}

	if req.Hours != nil {
		if err := validateHours(*req.Hours); err != nil {
			return domain.TimeEntry{}, err
		}
		entry.Hours = *req.Hours
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if len(description) < domain.MinDescriptionLen {
			return domain.TimeEntry{}, domain.ErrDescriptionTooShort
		}
		entry.Description = description
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return domain.TimeEntry{}, err
		}
		entry.Date = date
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, entry); err != nil {
		return domain.TimeEntry{}, err
	}
	return *entry, nil
}

// Delete is reserved to owners; contributors and managers never delete
// entries, not even their own.
func (s *Service) Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	if actor.Role != authdomain.RoleOwner {
		return domain.ErrNotEditable
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

// editable enforces the edit policy: owners may touch any entry, contributors
// only their own and only while the entry's date is still today.
func (s *Service) editable(actor authdomain.Principal, entry *domain.TimeEntry) error {
	if actor.Role == authdomain.RoleOwner {
		return nil
	}
	if actor.Role != authdomain.RoleContributor || entry.UserID != actor.ID {
		return domain.ErrNotEditable
	}
	if !sameDay(entry.Date, time.Now().UTC()) {
		return domain.ErrEditWindowClosed
	}
	return nil
}

func (s *Service) notifyLogged(ctx context.Context, actor authdomain.Principal, entry domain.TimeEntry) {
	var recipients []snowflake.ID

	managers, err := s.notifRepo.ManagerIDsForClient(ctx, s.db, entry.ClientID)
	if err != nil {
		s.log.Warn("time entry fanout managers failed", zap.Error(err))
	}
	recipients = append(recipients, managers...)

	owners, err := s.notifRepo.ActiveOwnerIDs(ctx, s.db)
	if err != nil {
		s.log.Warn("time entry fanout owners failed", zap.Error(err))
	}
	recipients = append(recipients, owners...)

	filtered := recipients[:0]
	for _, id := range recipients {
		if id != actor.ID {
			filtered = append(filtered, id)
		}
	}

	s.notifSvc.Notify(ctx, notifdomain.Fanout{
		Recipients: filtered,
		Type:       notifdomain.TypeTimeEntry,
		Message:    fmt.Sprintf("%s logged %.2f hours on %s", actor.Name, entry.Hours, entry.Date.Format(dateLayout)),
		EntityType: notifdomain.EntityTimeEntry,
		EntityID:   entry.ID,
	})
}

// formatHours prints 2.5 as "2.5" and 3 as "3", matching the way hours are
// echoed back in change log titles.
func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

func validateHours(hours float64) error {
	if hours < domain.MinHours || hours > domain.MaxHours {
		return domain.ErrInvalidHours
	}
	return nil
}

// parseDate accepts a calendar date and rejects anything after today. The
// comparison is date-only so an entry for today never trips the check.
func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return time.Time{}, domain.ErrFutureDate
	}
	return date, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
