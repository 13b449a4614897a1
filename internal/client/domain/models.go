package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Client struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Status    string       `json:"status"`
	LogoURL   *string      `json:"logo_url"`
	Notes     *string      `json:"notes"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

type ClientManager struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	ClientID snowflake.ID `json:"client_id"`
	UserID   snowflake.ID `json:"user_id"`
}

func (ClientManager) TableName() string { return "client_managers" }

// ManagerInfo is the subset of a user row shown alongside a client.
type ManagerInfo struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	AvatarURL *string      `json:"avatar_url"`
}

type ClientStats struct {
	AccountCount  int64 `json:"account_count"`
	WebsiteCount  int64 `json:"website_count"`
	CampaignCount int64 `json:"campaign_count"`
}

type ClientDetail struct {
	Client
	Managers []ManagerInfo `json:"managers"`
	ClientStats
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify lowercases the name and replaces each character outside [a-z0-9-]
// with a hyphen. Runs are not collapsed and edge hyphens are kept.
func Slugify(name string) string {
	return slugStrip.ReplaceAllString(strings.ToLower(name), "-")
}
