package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

type CreateClientRequest struct {
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	LogoURL *string `json:"logo_url"`
	Notes   *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Status  *string `json:"status"`
	LogoURL *string `json:"logo_url"`
	Notes   *string `json:"notes"`
}

type Service interface {
	List(ctx context.Context, actor authdomain.Principal) ([]ClientDetail, error)
	Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*ClientDetail, error)
	Create(ctx context.Context, actor authdomain.Principal, req CreateClientRequest) (Client, error)
	Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
	AssignManager(ctx context.Context, actor authdomain.Principal, clientID, userID snowflake.ID) error
	RemoveManager(ctx context.Context, actor authdomain.Principal, clientID, userID snowflake.ID) error
}

var (
	ErrNotFound      = errors.New("client_not_found")
	ErrSlugTaken     = errors.New("client_slug_taken")
	ErrInvalidName   = errors.New("invalid_client_name")
	ErrInvalidStatus = errors.New("invalid_client_status")
	ErrNotManager    = errors.New("user_not_manager")
)
