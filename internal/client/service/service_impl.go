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
	"github.com/agencydesk/agencydesk/internal/client/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/pkg/db"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	NotifSvc notifdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	notifSvc notifdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("client.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		notifSvc: p.NotifSvc,
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal) ([]domain.ClientDetail, error) {
	clients, err := s.repo.List(ctx, s.db, authz.ClientScope(actor))
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, clients)
}

func (s *Service) Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.ClientDetail, error) {
	clients, err := s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		return authz.ClientScope(actor)(tx).Where("clients.id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, domain.ErrNotFound
	}

	details, err := s.decorate(ctx, clients)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *Service) Create(ctx context.Context, actor authdomain.Principal, req domain.CreateClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}
	slug := domain.Slugify(name)

	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}
	if status != domain.StatusActive && status != domain.StatusInactive {
		return domain.Client{}, domain.ErrInvalidStatus
	}

	existing, err := s.repo.FindBySlug(ctx, s.db, slug)
	if err != nil {
		return domain.Client{}, err
	}
	if existing != nil {
		return domain.Client{}, domain.ErrSlugTaken
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug,
		Status:    status,
		LogoURL:   req.LogoURL,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Client{}, domain.ErrSlugTaken
		}
		return domain.Client{}, err
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()), zap.String("slug", client.Slug))
	return client, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req domain.UpdateClientRequest) (domain.Client, error) {
	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if client == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	if req.Name != nil && *req.Name != client.Name {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		slug := domain.Slugify(name)
		if slug != client.Slug {
			existing, err := s.repo.FindBySlug(ctx, s.db, slug)
			if err != nil {
				return domain.Client{}, err
			}
			if existing != nil && existing.ID != client.ID {
				return domain.Client{}, domain.ErrSlugTaken
			}
		}
		client.Name = name
		client.Slug = slug
	}
	if req.Status != nil {
		if *req.Status != domain.StatusActive && *req.Status != domain.StatusInactive {
			return domain.Client{}, domain.ErrInvalidStatus
		}
		client.Status = *req.Status
	}
	if req.LogoURL != nil {
		client.LogoURL = req.LogoURL
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}
	client.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, client); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Client{}, domain.ErrSlugTaken
		}
		return domain.Client{}, err
	}
	return *client, nil
}

func (s *Service) Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

// AssignManager is idempotent; assigning the same manager twice is a no-op.
func (s *Service) AssignManager(ctx context.Context, actor authdomain.Principal, clientID, userID snowflake.ID) error {
	client, err := s.repo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}

	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role FROM users WHERE id = ?`, userID,
	).Scan(&row).Error; err != nil {
		return err
	}
	if row.Role != authdomain.RoleManager && row.Role != authdomain.RoleOwner {
		return domain.ErrNotManager
	}

	err = s.repo.AddManager(ctx, s.db, domain.ClientManager{
		ID:       s.genID.Generate(),
		ClientID: clientID,
		UserID:   userID,
	})
	if err != nil {
		return err
	}

	s.notifSvc.Notify(ctx, notifdomain.Fanout{
		Recipients: []snowflake.ID{userID},
		Type:       notifdomain.TypeManagerAssigned,
		Message:    fmt.Sprintf("You've been assigned to manage %s", client.Name),
		EntityType: notifdomain.EntityClient,
		EntityID:   clientID,
	})
	return nil
}

func (s *Service) RemoveManager(ctx context.Context, actor authdomain.Principal, clientID, userID snowflake.ID) error {
	client, err := s.repo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}
	return s.repo.RemoveManager(ctx, s.db, clientID, userID)
}

func (s *Service) decorate(ctx context.Context, clients []*domain.Client) ([]domain.ClientDetail, error) {
	ids := make([]snowflake.ID, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
	}

	managers, err := s.repo.ManagersFor(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.StatsFor(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	details := make([]domain.ClientDetail, 0, len(clients))
	for _, c := range clients {
		detail := domain.ClientDetail{
			Client:      *c,
			Managers:    managers[c.ID],
			ClientStats: stats[c.ID],
		}
		if detail.Managers == nil {
			detail.Managers = []domain.ManagerInfo{}
		}
		details = append(details, detail)
	}
	return details, nil
}
