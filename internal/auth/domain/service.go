package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Authenticate verifies a bearer token and rebuilds the principal from storage.
	Authenticate(ctx context.Context, bearer string) (*Principal, error)

	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Invite(ctx context.Context, actor Principal, req InviteRequest) (*InviteResult, error)
	AcceptInvite(ctx context.Context, req RedeemRequest) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req RedeemRequest) error

	// ResolveGoogle maps an external Google identity onto an existing staff
	// account. It never creates accounts.
	ResolveGoogle(ctx context.Context, googleID, email, name string) (*LoginResult, error)

	Me(ctx context.Context, userID snowflake.ID) (*MeResponse, error)
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type InviteRequest struct {
	Name     string
	Email    string
	Role     string
	ClientID *snowflake.ID
}

type InviteResult struct {
	User        User   `json:"user"`
	InviteLink  string `json:"invite_link"`
	InviteToken string `json:"invite_token"`
}

type RedeemRequest struct {
	Token    string
	Password string
}

type MeResponse struct {
	User       User    `json:"user"`
	ClientName *string `json:"client_name,omitempty"`
}
