package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

const (
	MinHours = 0.25
	MaxHours = 24.00

	MinDescriptionLen = 10
)

// TimeEntry denormalizes client_id and website_id from the campaign at write
// time so reports never join through campaigns.
type TimeEntry struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID      snowflake.ID `json:"user_id"`
	CampaignID  snowflake.ID `json:"campaign_id"`
	ClientID    snowflake.ID `json:"client_id"`
	WebsiteID   snowflake.ID `json:"website_id"`
	Date        time.Time    `json:"date"`
	Hours       float64      `json:"hours"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (TimeEntry) TableName() string { return "time_entries" }

type EntryDetail struct {
	TimeEntry
	UserName     string `json:"user_name"`
	CampaignName string `json:"campaign_name"`
	ClientName   string `json:"client_name"`
}

type CreateEntryRequest struct {
	CampaignID  snowflake.ID `json:"campaign_id,string"`
	Date        string       `json:"date"`
	Hours       float64      `json:"hours"`
	Description string       `json:"description"`
}

type UpdateEntryRequest struct {
	Date        *string  `json:"date"`
	Hours       *float64 `json:"hours"`
	Description *string  `json:"description"`
}

type ListEntriesRequest struct {
	UserID     *snowflake.ID
	CampaignID *snowflake.ID
	ClientID   *snowflake.ID
	From       *time.Time
	To         *time.Time
	Page       pagination.Pagination
}

type ListEntriesResponse struct {
	pagination.PageInfo
	Entries    []*EntryDetail `json:"entries"`
	TotalHours float64        `json:"total_hours"`
}

type Service interface {
	List(ctx context.Context, actor authdomain.Principal, req ListEntriesRequest) (ListEntriesResponse, error)
	Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*TimeEntry, error)
	Create(ctx context.Context, actor authdomain.Principal, req CreateEntryRequest) (TimeEntry, error)
	Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req UpdateEntryRequest) (TimeEntry, error)
	Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *TimeEntry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TimeEntry, error)
	List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, page pagination.Pagination) ([]*EntryDetail, error)
	SumHours(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (float64, error)
	Update(ctx context.Context, db *gorm.DB, entry *TimeEntry) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

var (
	ErrNotFound            = errors.New("time_entry_not_found")
	ErrCampaignNotFound    = errors.New("time_entry_campaign_not_found")
	ErrCampaignCompleted   = errors.New("time_entry_campaign_completed")
	ErrInvalidHours        = errors.New("invalid_time_entry_hours")
	ErrDescriptionTooShort = errors.New("time_entry_description_too_short")
	ErrInvalidDate         = errors.New("invalid_time_entry_date")
	ErrFutureDate          = errors.New("time_entry_date_in_future")
	ErrEditWindowClosed    = errors.New("time_entry_edit_window_closed")
	ErrNotEditable         = errors.New("time_entry_not_editable")
)
