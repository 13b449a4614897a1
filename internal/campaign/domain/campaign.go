package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

type Campaign struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	WebsiteID       snowflake.ID `json:"website_id"`
	ClientID        snowflake.ID `json:"client_id"`
	Name            string       `json:"name"`
	ChannelCategory *string      `json:"channel_category"`
	ChannelPlatform *string      `json:"channel_platform"`
	Status          string       `json:"status"`
	StartDate       *time.Time   `json:"start_date"`
	EndDate         *time.Time   `json:"end_date"`
	Notes           *string      `json:"notes"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }

type Contributor struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	CampaignID snowflake.ID `json:"campaign_id"`
	UserID     snowflake.ID `json:"user_id"`
}

func (Contributor) TableName() string { return "campaign_contributors" }

type ContributorInfo struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	AvatarURL *string      `json:"avatar_url"`
}

type CampaignDetail struct {
	Campaign
	Contributors []ContributorInfo `json:"contributors"`
}

type CreateCampaignRequest struct {
	WebsiteID       snowflake.ID `json:"website_id,string"`
	Name            string       `json:"name"`
	ChannelCategory *string      `json:"channel_category"`
	ChannelPlatform *string      `json:"channel_platform"`
	StartDate       *time.Time   `json:"start_date"`
	EndDate         *time.Time   `json:"end_date"`
	Notes           *string      `json:"notes"`
}

type UpdateCampaignRequest struct {
	Name            *string    `json:"name"`
	ChannelCategory *string    `json:"channel_category"`
	ChannelPlatform *string    `json:"channel_platform"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Notes           *string    `json:"notes"`
}

type ListCampaignsRequest struct {
	ClientID  *snowflake.ID
	WebsiteID *snowflake.ID
	Status    string
}

type Service interface {
	List(ctx context.Context, actor authdomain.Principal, req ListCampaignsRequest) ([]*Campaign, error)
	Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*CampaignDetail, error)
	Create(ctx context.Context, actor authdomain.Principal, req CreateCampaignRequest) (Campaign, error)
	Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req UpdateCampaignRequest) (Campaign, error)
	ChangeStatus(ctx context.Context, actor authdomain.Principal, id snowflake.ID, status string) (Campaign, error)
	Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
	AssignContributor(ctx context.Context, actor authdomain.Principal, campaignID, userID snowflake.ID) error
	RemoveContributor(ctx context.Context, actor authdomain.Principal, campaignID, userID snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]*Campaign, error)
	Update(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, updatedAt time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	AddContributor(ctx context.Context, db *gorm.DB, assignment Contributor) error
	RemoveContributor(ctx context.Context, db *gorm.DB, campaignID, userID snowflake.ID) error
	ContributorsFor(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]ContributorInfo, error)
}

var (
	ErrNotFound       = errors.New("campaign_not_found")
	ErrInvalidName    = errors.New("invalid_campaign_name")
	ErrInvalidWebsite = errors.New("invalid_campaign_website")
	ErrInvalidStatus  = errors.New("invalid_campaign_status")
	ErrNotContributor = errors.New("user_not_contributor")
)
