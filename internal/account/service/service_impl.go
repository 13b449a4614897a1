package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/account/domain"
	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal, req domain.ListAccountsRequest) ([]*domain.Account, error) {
	return s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		tx = authz.AccountScope(actor)(tx)
		if req.ClientID != nil {
			tx = tx.Where("accounts.client_id = ?", *req.ClientID)
		}
		return tx
	})
}

func (s *Service) Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.Account, error) {
	accounts, err := s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		return authz.AccountScope(actor)(tx).Where("accounts.id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domain.ErrNotFound
	}
	return accounts[0], nil
}

func (s *Service) Create(ctx context.Context, actor authdomain.Principal, req domain.CreateAccountRequest) (domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Account{}, domain.ErrInvalidName
	}
	if req.ClientID == 0 {
		return domain.Account{}, domain.ErrInvalidClient
	}

	visible, err := s.clientVisible(ctx, actor, req.ClientID)
	if err != nil {
		return domain.Account{}, err
	}
	if !visible {
		return domain.Account{}, domain.ErrInvalidClient
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:        s.genID.Generate(),
		ClientID:  req.ClientID,
		Name:      name,
		Type:      req.Type,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req domain.UpdateAccountRequest) (domain.Account, error) {
	account, err := s.Get(ctx, actor, id)
	if err != nil {
		return domain.Account{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Account{}, domain.ErrInvalidName
		}
		account.Name = name
	}
	if req.Type != nil {
		account.Type = req.Type
	}
	if req.Notes != nil {
		account.Notes = req.Notes
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, account); err != nil {
		return domain.Account{}, err
	}
	return *account, nil
}

func (s *Service) Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) clientVisible(ctx context.Context, actor authdomain.Principal, clientID snowflake.ID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("clients").
		Scopes(authz.ClientScope(actor)).
		Where("clients.id = ?", clientID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
