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
	EntityWebsite  = "website"
	EntityCampaign = "campaign"

	EntryManual = "manual"
	EntrySystem = "system"
)

type Entry struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	EntityType string        `json:"entity_type"`
	EntityID   snowflake.ID  `json:"entity_id"`
	ClientID   snowflake.ID  `json:"client_id"`
	UserID     *snowflake.ID `json:"user_id"`
	EntryType  string        `json:"entry_type"`
	Title      string        `json:"title"`
	Body       string        `json:"body"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (Entry) TableName() string { return "change_log_entries" }

// EntryDetail joins the author's display fields onto an entry. System entries
// have no author.
type EntryDetail struct {
	Entry
	AuthorName *string `json:"author_name"`
}

type CreateEntryRequest struct {
	EntityType string       `json:"entity_type"`
	EntityID   snowflake.ID `json:"entity_id,string"`
	Title      string       `json:"title"`
	Body       string       `json:"body"`
}

type ListEntriesRequest struct {
	EntityType string
	EntityID   *snowflake.ID
	ClientID   *snowflake.ID
	Page       pagination.Pagination
}

type ListEntriesResponse struct {
	pagination.PageInfo
	Entries []*EntryDetail `json:"entries"`
}

type Service interface {
	CreateManual(ctx context.Context, actor authdomain.Principal, req CreateEntryRequest) (Entry, error)
	// RecordSystem never fails the caller; an audit trail gap is preferable
	// to failing the operation being recorded.
	RecordSystem(ctx context.Context, entityType string, entityID, clientID snowflake.ID, title, body string)
	List(ctx context.Context, actor authdomain.Principal, req ListEntriesRequest) (ListEntriesResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, page pagination.Pagination) ([]*EntryDetail, error)
}

var (
	ErrNotFound      = errors.New("change_log_entity_not_found")
	ErrInvalidEntity = errors.New("invalid_change_log_entity")
	ErrInvalidTitle  = errors.New("invalid_change_log_title")
	ErrInvalidBody   = errors.New("invalid_change_log_body")
)
