package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/campaign/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (id, website_id, client_id, name, channel_category, channel_platform, status, start_date, end_date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.WebsiteID,
		campaign.ClientID,
		campaign.Name,
		campaign.ChannelCategory,
		campaign.ChannelPlatform,
		campaign.Status,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Notes,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT id, website_id, client_id, name, channel_category, channel_platform, status, start_date, end_date, notes, created_at, updated_at
		 FROM campaigns WHERE id = ?`, id,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]*domain.Campaign, error) {
	var campaigns []*domain.Campaign
	err := db.WithContext(ctx).
		Model(&domain.Campaign{}).
		Scopes(scope).
		Order("created_at desc, id desc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaigns
		 SET name = ?, channel_category = ?, channel_platform = ?, start_date = ?, end_date = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		campaign.Name,
		campaign.ChannelCategory,
		campaign.ChannelPlatform,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Notes,
		campaign.UpdatedAt,
		campaign.ID,
	).Error
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM campaigns WHERE id = ?`, id).Error
}

func (r *repo) AddContributor(ctx context.Context, db *gorm.DB, assignment domain.Contributor) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaign_contributors (id, campaign_id, user_id)
		 VALUES (?, ?, ?)
		 ON CONFLICT (campaign_id, user_id) DO NOTHING`,
		assignment.ID,
		assignment.CampaignID,
		assignment.UserID,
	).Error
}

func (r *repo) RemoveContributor(ctx context.Context, db *gorm.DB, campaignID, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM campaign_contributors WHERE campaign_id = ? AND user_id = ?`,
		campaignID, userID,
	).Error
}

func (r *repo) ContributorsFor(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]domain.ContributorInfo, error) {
	var contributors []domain.ContributorInfo
	err := db.WithContext(ctx).Raw(
		`SELECT u.id, u.name, u.email, u.avatar_url
		 FROM campaign_contributors cc
		 JOIN users u ON u.id = cc.user_id
		 WHERE cc.campaign_id = ?
		 ORDER BY u.name asc`,
		campaignID,
	).Scan(&contributors).Error
	if err != nil {
		return nil, err
	}
	return contributors, nil
}
