package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
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
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Notify delivers to each recipient independently. A failure is logged and
// skipped so one bad row cannot sink the whole broadcast, and each successful
// insert prunes that recipient's inbox down to the cap.
func (s *Service) Notify(ctx context.Context, fanout domain.Fanout) {
	seen := make(map[snowflake.ID]struct{}, len(fanout.Recipients))
	now := time.Now().UTC()

	for _, userID := range fanout.Recipients {
		if userID == 0 {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		entityType := fanout.EntityType
		entityID := fanout.EntityID
		notification := domain.Notification{
			ID:        s.genID.Generate(),
			UserID:    userID,
			Type:      fanout.Type,
			Message:   fanout.Message,
			CreatedAt: now,
		}
		if entityType != "" {
			notification.EntityType = &entityType
			notification.EntityID = &entityID
		}

		if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
			s.log.Warn("notification insert failed",
				zap.String("user_id", userID.String()),
				zap.String("type", fanout.Type),
				zap.Error(err))
			continue
		}
		if err := s.repo.Prune(ctx, s.db, userID, domain.KeepPerUser); err != nil {
			s.log.Warn("notification prune failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal, req domain.ListNotificationsRequest) (domain.ListNotificationsResponse, error) {
	notifications, err := s.repo.List(ctx, s.db, actor.ID, req.UnreadOnly, req.Page)
	if err != nil {
		return domain.ListNotificationsResponse{}, err
	}

	unread, err := s.repo.UnreadCount(ctx, s.db, actor.ID)
	if err != nil {
		return domain.ListNotificationsResponse{}, err
	}

	notifications, pageInfo := pagination.BuildPageInfo(notifications, req.Page.PageSize, func(n *domain.Notification) pagination.Cursor {
		return pagination.Cursor{
			ID:        n.ID.String(),
			CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
		}
	})

	return domain.ListNotificationsResponse{
		PageInfo:      pageInfo,
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

func (s *Service) MarkRead(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	affected, err := s.repo.MarkRead(ctx, s.db, actor.ID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, actor authdomain.Principal) error {
	return s.repo.MarkAllRead(ctx, s.db, actor.ID)
}
