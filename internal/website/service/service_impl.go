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
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	"github.com/agencydesk/agencydesk/internal/website/domain"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ChangeLogSvc changelogdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	changeLogSvc changelogdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("website.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		changeLogSvc: p.ChangeLogSvc,
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal, req domain.ListWebsitesRequest) ([]*domain.Website, error) {
	return s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		tx = authz.WebsiteScope(actor)(tx)
		if req.ClientID != nil {
			tx = tx.Where("websites.client_id = ?", *req.ClientID)
		}
		if req.AccountID != nil {
			tx = tx.Where("websites.account_id = ?", *req.AccountID)
		}
		return tx
	})
}

func (s *Service) Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.Website, error) {
	websites, err := s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		return authz.WebsiteScope(actor)(tx).Where("websites.id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	if len(websites) == 0 {
		return nil, domain.ErrNotFound
	}
	return websites[0], nil
}

// Create resolves the owning account and copies its client_id onto the new
// website row.
func (s *Service) Create(ctx context.Context, actor authdomain.Principal, req domain.CreateWebsiteRequest) (domain.Website, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Website{}, domain.ErrInvalidName
	}
	if req.AccountID == 0 {
		return domain.Website{}, domain.ErrInvalidAccount
	}

	var account struct {
		ID       snowflake.ID `gorm:"column:id"`
		ClientID snowflake.ID `gorm:"column:client_id"`
	}
	err := s.db.WithContext(ctx).
		Table("accounts").
		Select("accounts.id, accounts.client_id").
		Scopes(authz.AccountScope(actor)).
		Where("accounts.id = ?", req.AccountID).
		Scan(&account).Error
	if err != nil {
		return domain.Website{}, err
	}
	if account.ID == 0 {
		return domain.Website{}, domain.ErrInvalidAccount
	}

	now := time.Now().UTC()
	website := domain.Website{
		ID:        s.genID.Generate(),
		AccountID: account.ID,
		ClientID:  account.ClientID,
		Name:      name,
		URL:       req.URL,
		Platform:  req.Platform,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &website); err != nil {
		return domain.Website{}, err
	}

	display := website.Name
	if website.URL != nil && *website.URL != "" {
		display = *website.URL
	}
	s.changeLogSvc.RecordSystem(ctx, changelogdomain.EntityWebsite, website.ID, website.ClientID,
		fmt.Sprintf("Website '%s' was added", website.Name),
		fmt.Sprintf("Website '%s' was added to the account.", display))

	return website, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req domain.UpdateWebsiteRequest) (domain.Website, error) {
	website, err := s.Get(ctx, actor, id)
	if err != nil {
		return domain.Website{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Website{}, domain.ErrInvalidName
		}
		website.Name = name
	}
	if req.URL != nil {
		website.URL = req.URL
	}
	if req.Platform != nil {
		website.Platform = req.Platform
	}
	if req.Status != nil {
		if *req.Status != domain.StatusActive && *req.Status != domain.StatusInactive {
			return domain.Website{}, domain.ErrInvalidStatus
		}
		website.Status = *req.Status
	}
	website.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, website); err != nil {
		return domain.Website{}, err
	}
	return *website, nil
}

func (s *Service) Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}
