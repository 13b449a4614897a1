package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

// Settings is a single-row table; Get creates the row on first read.
type Settings struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	AgencyName string       `json:"agency_name"`
	LogoURL    *string      `json:"logo_url"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (Settings) TableName() string { return "agency_settings" }

type UpdateSettingsRequest struct {
	AgencyName *string `json:"agency_name"`
	LogoURL    *string `json:"logo_url"`
}

type Service interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, actor authdomain.Principal, req UpdateSettingsRequest) (Settings, error)
}

var ErrInvalidName = errors.New("invalid_agency_name")
