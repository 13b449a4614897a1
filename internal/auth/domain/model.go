// Package domain contains the user model and the principal resolved per request.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner       = "owner"
	RoleManager     = "manager"
	RoleContributor = "contributor"
	RoleClient      = "client" // client-portal login tied to one client
)

const (
	StatusActive   = "active"
	StatusInvited  = "invited"
	StatusInactive = "inactive"
)

// StaffRoles are the internal agency roles (everything but the client portal).
var StaffRoles = []string{RoleOwner, RoleManager, RoleContributor}

func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleManager, RoleContributor, RoleClient:
		return true
	}
	return false
}

// User is a row in the users table.
type User struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name            string        `gorm:"type:text;not null" json:"name"`
	Email           string        `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash    *string       `gorm:"column:password_hash" json:"-"`
	Role            string        `gorm:"type:text;not null" json:"role"`
	Status          string        `gorm:"type:text;not null" json:"status"`
	ClientID        *snowflake.ID `gorm:"column:client_id" json:"client_id,omitempty"`
	AvatarURL       *string       `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	GoogleID        *string       `gorm:"column:google_id" json:"-"`
	InviteTokenHash *string       `gorm:"column:invite_token_hash" json:"-"`
	InviteExpires   *time.Time    `gorm:"column:invite_expires" json:"-"`
	ResetTokenHash  *string       `gorm:"column:reset_token_hash" json:"-"`
	ResetExpires    *time.Time    `gorm:"column:reset_expires" json:"-"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Principal is the acting identity for one request. It is rebuilt from the
// users table on every request; only the subject id is trusted from the token.
type Principal struct {
	ID       snowflake.ID
	Name     string
	Email    string
	Role     string
	Status   string
	ClientID *snowflake.ID
}

func (p Principal) IsStaff() bool { return p.Role != RoleClient }
