package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
	"github.com/agencydesk/agencydesk/internal/changelog/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	NotifSvc  notifdomain.Service
	NotifRepo notifdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	notifSvc  notifdomain.Service
	notifRepo notifdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("changelog.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		notifSvc:  p.NotifSvc,
		notifRepo: p.NotifRepo,
	}
}

func (s *Service) CreateManual(ctx context.Context, actor authdomain.Principal, req domain.CreateEntryRequest) (domain.Entry, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Entry{}, domain.ErrInvalidTitle
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return domain.Entry{}, domain.ErrInvalidBody
	}
	if req.EntityType != domain.EntityWebsite && req.EntityType != domain.EntityCampaign {
		return domain.Entry{}, domain.ErrInvalidEntity
	}

	clientID, entityName, err := s.resolveEntity(ctx, actor, req.EntityType, req.EntityID)
	if err != nil {
		return domain.Entry{}, err
	}

	authorID := actor.ID
	entry := domain.Entry{
		ID:         s.genID.Generate(),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		ClientID:   clientID,
		UserID:     &authorID,
		EntryType:  domain.EntryManual,
		Title:      title,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.Entry{}, err
	}

	s.fanout(ctx, actor, entry, entityName)
	return entry, nil
}

func (s *Service) RecordSystem(ctx context.Context, entityType string, entityID, clientID snowflake.ID, title, body string) {
	entry := domain.Entry{
		ID:         s.genID.Generate(),
		EntityType: entityType,
		EntityID:   entityID,
		ClientID:   clientID,
		EntryType:  domain.EntrySystem,
		Title:      title,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("system change log entry failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal, req domain.ListEntriesRequest) (domain.ListEntriesResponse, error) {
	entries, err := s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		tx = authz.ChangeLogScope(actor)(tx)
		if req.EntityType != "" {
			tx = tx.Where("change_log_entries.entity_type = ?", req.EntityType)
		}
		if req.EntityID != nil {
			tx = tx.Where("change_log_entries.entity_id = ?", *req.EntityID)
		}
		if req.ClientID != nil {
			tx = tx.Where("change_log_entries.client_id = ?", *req.ClientID)
		}
		return tx
	}, req.Page)
	if err != nil {
		return domain.ListEntriesResponse{}, err
	}

	entries, pageInfo := pagination.BuildPageInfo(entries, req.Page.PageSize, func(e *domain.EntryDetail) pagination.Cursor {
		return pagination.Cursor{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		}
	})
	return domain.ListEntriesResponse{PageInfo: pageInfo, Entries: entries}, nil
}

// resolveEntity loads the target row within the actor's visibility and
// returns its owning client and display name.
func (s *Service) resolveEntity(ctx context.Context, actor authdomain.Principal, entityType string, entityID snowflake.ID) (snowflake.ID, string, error) {
	var row struct {
		ID       snowflake.ID `gorm:"column:id"`
		ClientID snowflake.ID `gorm:"column:client_id"`
		Name     string       `gorm:"column:name"`
	}

	var err error
	switch entityType {
	case domain.EntityWebsite:
		err = s.db.WithContext(ctx).
			Table("websites").
			Select("websites.id, websites.client_id, websites.name").
			Scopes(authz.WebsiteScope(actor)).
			Where("websites.id = ?", entityID).
			Scan(&row).Error
	case domain.EntityCampaign:
		err = s.db.WithContext(ctx).
			Table("campaigns").
			Select("campaigns.id, campaigns.client_id, campaigns.name").
			Scopes(authz.CampaignScope(actor)).
			Where("campaigns.id = ?", entityID).
			Scan(&row).Error
	}
	if err != nil {
		return 0, "", err
	}
	if row.ID == 0 {
		return 0, "", domain.ErrNotFound
	}
	return row.ClientID, row.Name, nil
}

// fanout notifies the client's managers, the active owners, and the client's
// active portal users, excluding the author.
func (s *Service) fanout(ctx context.Context, actor authdomain.Principal, entry domain.Entry, entityName string) {
	recipients, err := s.notifRepo.ManagerIDsForClient(ctx, s.db, entry.ClientID)
	if err != nil {
		s.log.Warn("change log fanout recipients failed", zap.Error(err))
		recipients = nil
	}
	owners, err := s.notifRepo.ActiveOwnerIDs(ctx, s.db)
	if err != nil {
		s.log.Warn("change log fanout owners failed", zap.Error(err))
	}
	recipients = append(recipients, owners...)

	portalUsers, err := s.notifRepo.ActivePortalUserIDs(ctx, s.db, entry.ClientID)
	if err != nil {
		s.log.Warn("change log fanout portal users failed", zap.Error(err))
	}
	recipients = append(recipients, portalUsers...)

	filtered := recipients[:0]
	for _, id := range recipients {
		if id != actor.ID {
			filtered = append(filtered, id)
		}
	}

	s.notifSvc.Notify(ctx, notifdomain.Fanout{
		Recipients: filtered,
		Type:       notifdomain.TypeChangeLog,
		Message:    fmt.Sprintf("%s logged a change on %s: %s", actor.Name, entityName, entry.Title),
		EntityType: notifdomain.EntityChangeLog,
		EntityID:   entry.ID,
	})
}
