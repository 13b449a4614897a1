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
	"github.com/agencydesk/agencydesk/internal/campaign/domain"
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
)

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
		log:          p.Log.Named("campaign.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		changeLogSvc: p.ChangeLogSvc,
		notifSvc:     p.NotifSvc,
		notifRepo:    p.NotifRepo,
	}
}

func (s *Service) List(ctx context.Context, actor authdomain.Principal, req domain.ListCampaignsRequest) ([]*domain.Campaign, error) {
	return s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		tx = authz.CampaignScope(actor)(tx)
		if req.ClientID != nil {
			tx = tx.Where("campaigns.client_id = ?", *req.ClientID)
		}
		if req.WebsiteID != nil {
			tx = tx.Where("campaigns.website_id = ?", *req.WebsiteID)
		}
		if req.Status != "" {
			tx = tx.Where("campaigns.status = ?", req.Status)
		}
		return tx
	})
}

func (s *Service) Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.CampaignDetail, error) {
	campaign, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	contributors, err := s.repo.ContributorsFor(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if contributors == nil {
		contributors = []domain.ContributorInfo{}
	}
	return &domain.CampaignDetail{Campaign: *campaign, Contributors: contributors}, nil
}

func (s *Service) Create(ctx context.Context, actor authdomain.Principal, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Campaign{}, domain.ErrInvalidName
	}
	if req.WebsiteID == 0 {
		return domain.Campaign{}, domain.ErrInvalidWebsite
	}

	var website struct {
		ID       snowflake.ID `gorm:"column:id"`
		ClientID snowflake.ID `gorm:"column:client_id"`
	}
	err := s.db.WithContext(ctx).
		Table("websites").
		Select("websites.id, websites.client_id").
		Scopes(authz.WebsiteScope(actor)).
		Where("websites.id = ?", req.WebsiteID).
		Scan(&website).Error
	if err != nil {
		return domain.Campaign{}, err
	}
	if website.ID == 0 {
		return domain.Campaign{}, domain.ErrInvalidWebsite
	}

	now := time.Now().UTC()
	campaign := domain.Campaign{
		ID:              s.genID.Generate(),
		WebsiteID:       website.ID,
		ClientID:        website.ClientID,
		Name:            name,
		ChannelCategory: req.ChannelCategory,
		ChannelPlatform: req.ChannelPlatform,
		Status:          domain.StatusActive,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
		return domain.Campaign{}, err
	}

	channel := "Unknown channel"
	if campaign.ChannelCategory != nil && *campaign.ChannelCategory != "" {
		channel = *campaign.ChannelCategory
	}
	s.changeLogSvc.RecordSystem(ctx, changelogdomain.EntityCampaign, campaign.ID, campaign.ClientID,
		fmt.Sprintf("Campaign '%s' was created", campaign.Name),
		fmt.Sprintf("Campaign '%s' (%s) was created.", campaign.Name, channel))

	return campaign, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req domain.UpdateCampaignRequest) (domain.Campaign, error) {
	campaign, err := s.visible(ctx, actor, id)
	if err != nil {
		return domain.Campaign{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Campaign{}, domain.ErrInvalidName
		}
		campaign.Name = name
	}
	if req.ChannelCategory != nil {
		campaign.ChannelCategory = req.ChannelCategory
	}
	if req.ChannelPlatform != nil {
		campaign.ChannelPlatform = req.ChannelPlatform
	}
	if req.StartDate != nil {
		campaign.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = req.EndDate
	}
	if req.Notes != nil {
		campaign.Notes = req.Notes
	}
	campaign.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, campaign); err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

// ChangeStatus flips the campaign's lifecycle state, records a system change
// log entry, and notifies everyone attached to the campaign. The side effects
// are best effort; the status write alone decides success.
func (s *Service) ChangeStatus(ctx context.Context, actor authdomain.Principal, id snowflake.ID, status string) (domain.Campaign, error) {
	if !domain.ValidStatus(status) {
		return domain.Campaign{}, domain.ErrInvalidStatus
	}

	campaign, err := s.visible(ctx, actor, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign.Status == status {
		return *campaign, nil
	}

	previous := campaign.Status
	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, s.db, id, status, now); err != nil {
		return domain.Campaign{}, err
	}
	campaign.Status = status
	campaign.UpdatedAt = now

	s.changeLogSvc.RecordSystem(ctx, changelogdomain.EntityCampaign, campaign.ID, campaign.ClientID,
		"Campaign status changed",
		fmt.Sprintf("Status changed from %s to %s by %s", previous, status, actor.Name))

	s.notifyStatusChange(ctx, *campaign, previous)
	return *campaign, nil
}

func (s *Service) Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error {
	if _, err := s.visible(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

// AssignContributor is idempotent; repeating an assignment is a no-op. Only
// contributor-role users can be assigned.
func (s *Service) AssignContributor(ctx context.Context, actor authdomain.Principal, campaignID, userID snowflake.ID) error {
	campaign, err := s.visible(ctx, actor, campaignID)
	if err != nil {
		return err
	}

	var row struct {
		Role string `gorm:"column:role"`
		Name string `gorm:"column:name"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role, name FROM users WHERE id = ?`, userID,
	).Scan(&row).Error; err != nil {
		return err
	}
	if row.Role != authdomain.RoleContributor {
		return domain.ErrNotContributor
	}

	err = s.repo.AddContributor(ctx, s.db, domain.Contributor{
		ID:         s.genID.Generate(),
		CampaignID: campaignID,
		UserID:     userID,
	})
	if err != nil {
		return err
	}

	s.changeLogSvc.RecordSystem(ctx, changelogdomain.EntityCampaign, campaign.ID, campaign.ClientID,
		fmt.Sprintf("%s was assigned to this campaign", row.Name),
		fmt.Sprintf("Contributor %s was assigned to campaign '%s'.", row.Name, campaign.Name))

	s.notifSvc.Notify(ctx, notifdomain.Fanout{
		Recipients: []snowflake.ID{userID},
		Type:       notifdomain.TypeContributorAssigned,
		Message:    fmt.Sprintf("You've been assigned to campaign '%s'", campaign.Name),
		EntityType: notifdomain.EntityCampaign,
		EntityID:   campaign.ID,
	})
	return nil
}

func (s *Service) RemoveContributor(ctx context.Context, actor authdomain.Principal, campaignID, userID snowflake.ID) error {
	if _, err := s.visible(ctx, actor, campaignID); err != nil {
		return err
	}
	return s.repo.RemoveContributor(ctx, s.db, campaignID, userID)
}

func (s *Service) visible(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*domain.Campaign, error) {
	campaigns, err := s.repo.List(ctx, s.db, func(tx *gorm.DB) *gorm.DB {
		return authz.CampaignScope(actor)(tx).Where("campaigns.id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return nil, domain.ErrNotFound
	}
	return campaigns[0], nil
}

// notifyStatusChange reaches the campaign's contributors, the client's
// managers, and the active owners, deduplicated.
func (s *Service) notifyStatusChange(ctx context.Context, campaign domain.Campaign, previous string) {
	var recipients []snowflake.ID

	contributors, err := s.notifRepo.ContributorIDsForCampaign(ctx, s.db, campaign.ID)
	if err != nil {
		s.log.Warn("status change fanout contributors failed", zap.Error(err))
	}
	recipients = append(recipients, contributors...)

	managers, err := s.notifRepo.ManagerIDsForClient(ctx, s.db, campaign.ClientID)
	if err != nil {
		s.log.Warn("status change fanout managers failed", zap.Error(err))
	}
	recipients = append(recipients, managers...)

	owners, err := s.notifRepo.ActiveOwnerIDs(ctx, s.db)
	if err != nil {
		s.log.Warn("status change fanout owners failed", zap.Error(err))
	}
	recipients = append(recipients, owners...)

	s.notifSvc.Notify(ctx, notifdomain.Fanout{
		Recipients: recipients,
		Type:       notifdomain.TypeCampaignStatus,
		Message:    fmt.Sprintf("Campaign %q moved from %s to %s", campaign.Name, previous, campaign.Status),
		EntityType: notifdomain.EntityCampaign,
		EntityID:   campaign.ID,
	})
}
