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
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Website carries a denormalized client_id so listing and scoping never need
// to hop through accounts.
type Website struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	AccountID snowflake.ID `json:"account_id"`
	ClientID  snowflake.ID `json:"client_id"`
	Name      string       `json:"name"`
	URL       *string      `json:"url"`
	Platform  *string      `json:"platform"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Website) TableName() string { return "websites" }

type CreateWebsiteRequest struct {
	AccountID snowflake.ID `json:"account_id,string"`
	Name      string       `json:"name"`
	URL       *string      `json:"url"`
	Platform  *string      `json:"platform"`
}

type UpdateWebsiteRequest struct {
	Name     *string `json:"name"`
	URL      *string `json:"url"`
	Platform *string `json:"platform"`
	Status   *string `json:"status"`
}

type ListWebsitesRequest struct {
	ClientID  *snowflake.ID
	AccountID *snowflake.ID
}

type Service interface {
	List(ctx context.Context, actor authdomain.Principal, req ListWebsitesRequest) ([]*Website, error)
	Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*Website, error)
	Create(ctx context.Context, actor authdomain.Principal, req CreateWebsiteRequest) (Website, error)
	Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req UpdateWebsiteRequest) (Website, error)
	Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, website *Website) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Website, error)
	List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]*Website, error)
	Update(ctx context.Context, db *gorm.DB, website *Website) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

var (
	ErrNotFound       = errors.New("website_not_found")
	ErrInvalidName    = errors.New("invalid_website_name")
	ErrInvalidAccount = errors.New("invalid_website_account")
	ErrInvalidStatus  = errors.New("invalid_website_status")
)
