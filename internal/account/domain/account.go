package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

// Account groups a client's websites by the platform login that owns them,
// e.g. a hosting panel or an ad platform seat.
type Account struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	ClientID  snowflake.ID `json:"client_id"`
	Name      string       `json:"name"`
	Type      *string      `json:"type"`
	Notes     *string      `json:"notes"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

type CreateAccountRequest struct {
	ClientID snowflake.ID `json:"client_id,string"`
	Name     string       `json:"name"`
	Type     *string      `json:"type"`
	Notes    *string      `json:"notes"`
}

type UpdateAccountRequest struct {
	Name  *string `json:"name"`
	Type  *string `json:"type"`
	Notes *string `json:"notes"`
}

type ListAccountsRequest struct {
	ClientID *snowflake.ID
}

type Service interface {
	List(ctx context.Context, actor authdomain.Principal, req ListAccountsRequest) ([]*Account, error)
	Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*Account, error)
	Create(ctx context.Context, actor authdomain.Principal, req CreateAccountRequest) (Account, error)
	Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req UpdateAccountRequest) (Account, error)
	Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]*Account, error)
	Update(ctx context.Context, db *gorm.DB, account *Account) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

var (
	ErrNotFound      = errors.New("account_not_found")
	ErrInvalidName   = errors.New("invalid_account_name")
	ErrInvalidClient = errors.New("invalid_account_client")
)
