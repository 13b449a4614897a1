package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/user/domain"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("user.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal, req domain.ListUsersRequest) ([]*domain.UserDetail, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.UserDetail, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req domain.UpdateUserRequest) (authdomain.User, error) {
	detail, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return authdomain.User{}, err
	}
	if detail == nil {
		return authdomain.User{}, domain.ErrNotFound
	}
	user := detail.User

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != "" {
			user.Name = name
		}
	}
	if req.Role != nil && *req.Role != user.Role {
		if id == actor.ID {
			return authdomain.User{}, domain.ErrSelfDemotion
		}
		if !authdomain.ValidRole(*req.Role) {
			return authdomain.User{}, domain.ErrInvalidRole
		}
		if user.Role == authdomain.RoleOwner {
			if err := s.ensureAnotherOwner(ctx, id); err != nil {
				return authdomain.User{}, err
			}
		}
		user.Role = *req.Role
	}
	if req.Status != nil && *req.Status != user.Status {
		switch *req.Status {
		case authdomain.StatusActive, authdomain.StatusInactive:
		default:
			return authdomain.User{}, domain.ErrInvalidStatus
		}
		if user.Role == authdomain.RoleOwner && *req.Status == authdomain.StatusInactive {
			if err := s.ensureAnotherOwner(ctx, id); err != nil {
				return authdomain.User{}, err
			}
		}
		user.Status = *req.Status
	}
	if req.ClientID != nil {
		user.ClientID = req.ClientID
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	// A portal login is meaningless without a client behind it.
	if user.Role == authdomain.RoleClient && user.ClientID == nil {
		return authdomain.User{}, domain.ErrClientRequired
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, &user); err != nil {
		return authdomain.User{}, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	if id == actor.ID {
		return domain.ErrSelfDeletion
	}
	detail, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if detail == nil {
		return domain.ErrNotFound
	}
	if detail.Role == authdomain.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *Service) ensureAnotherOwner(ctx context.Context, excluding snowflake.ID) error {
	var count int64
	err := s.db.WithContext(ctx).
		Table("users").
		Where("role = ? AND status = ? AND id <> ?", authdomain.RoleOwner, authdomain.StatusActive, excluding).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrLastOwner
	}
	return nil
}
