package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

// UserDetail joins the linked client's name for portal users.
type UserDetail struct {
	authdomain.User
	ClientName *string `json:"client_name"`
}

type UpdateUserRequest struct {
	Name      *string       `json:"name"`
	Role      *string       `json:"role"`
	Status    *string       `json:"status"`
	ClientID  *snowflake.ID `json:"client_id,string"`
	AvatarURL *string       `json:"avatar_url"`
}

type ListUsersRequest struct {
	Role   string
	Status string
}

type Service interface {
	List(ctx context.Context, actor authdomain.Principal, req ListUsersRequest) ([]*UserDetail, error)
	Get(ctx context.Context, actor authdomain.Principal, id snowflake.ID) (*UserDetail, error)
	Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req UpdateUserRequest) (authdomain.User, error)
	Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
}

type Repository interface {
	List(ctx context.Context, db *gorm.DB, req ListUsersRequest) ([]*UserDetail, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*UserDetail, error)
	Update(ctx context.Context, db *gorm.DB, user *authdomain.User) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

var (
	ErrNotFound       = errors.New("user_not_found")
	ErrInvalidRole    = errors.New("invalid_user_role")
	ErrInvalidStatus  = errors.New("invalid_user_status")
	ErrSelfDemotion   = errors.New("cannot_change_own_role")
	ErrSelfDeletion   = errors.New("cannot_delete_self")
	ErrLastOwner      = errors.New("cannot_remove_last_owner")
	ErrClientRequired = errors.New("client_role_requires_client")
)
