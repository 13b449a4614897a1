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
	TypeCampaignStatus      = "campaign_status"
	TypeTimeEntry           = "time_entry"
	TypeChangeLog           = "change_log"
	TypeManagerAssigned     = "manager_assigned"
	TypeContributorAssigned = "contributor_assigned"
)

const (
	EntityClient    = "client"
	EntityCampaign  = "campaign"
	EntityTimeEntry = "time_entry"
	EntityChangeLog = "change_log"
)

// keepPerUser caps a recipient's inbox. Older rows beyond the cap are pruned
// on every insert.
const KeepPerUser = 100

type Notification struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	UserID     snowflake.ID  `json:"user_id"`
	Type       string        `json:"type"`
	Message    string        `json:"message"`
	Read       bool          `json:"read"`
	EntityType *string       `json:"entity_type"`
	EntityID   *snowflake.ID `json:"entity_id"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

type ListNotificationsRequest struct {
	UnreadOnly bool
	Page       pagination.Pagination
}

type ListNotificationsResponse struct {
	pagination.PageInfo
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int64           `json:"unread_count"`
}

// Fanout describes one broadcast. Delivery is best effort per recipient; a
// failed insert for one recipient never blocks the others.
type Fanout struct {
	Recipients []snowflake.ID
	Type       string
	Message    string
	EntityType string
	EntityID   snowflake.ID
}

type Service interface {
	Notify(ctx context.Context, fanout Fanout)
	List(ctx context.Context, actor authdomain.Principal, req ListNotificationsRequest) (ListNotificationsResponse, error)
	MarkRead(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
	MarkAllRead(ctx context.Context, actor authdomain.Principal) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	Prune(ctx context.Context, db *gorm.DB, userID snowflake.ID, keep int) error
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool, page pagination.Pagination) ([]*Notification, error)
	UnreadCount(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) error

	ActiveOwnerIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
	ManagerIDsForClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]snowflake.ID, error)
	ContributorIDsForCampaign(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]snowflake.ID, error)
	ActivePortalUserIDs(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]snowflake.ID, error)
}

var ErrNotFound = errors.New("notification_not_found")
