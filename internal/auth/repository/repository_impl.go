package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, id snowflake.ID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	GetStaffByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByInviteHash(ctx context.Context, hash string, now time.Time) (*domain.User, error)
	GetByResetHash(ctx context.Context, hash string, now time.Time) (*domain.User, error)
	Create(ctx context.Context, user domain.User) error
	SetStatus(ctx context.Context, id snowflake.ID, status string) error
	SetResetToken(ctx context.Context, id snowflake.ID, hash string, expires time.Time) error
	ActivateWithPassword(ctx context.Context, id snowflake.ID, passwordHash string, clearInvite bool) error
	LinkGoogle(ctx context.Context, id snowflake.ID, googleID string) error
	ClientName(ctx context.Context, clientID snowflake.ID) (*string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) getOne(ctx context.Context, cond string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where(cond, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "LOWER(email) = ?", email)
}

func (r *repository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getOne(ctx, "google_id = ?", googleID)
}

func (r *repository) GetStaffByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "LOWER(email) = ? AND role <> ?", email, domain.RoleClient)
}

func (r *repository) GetByInviteHash(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	return r.getOne(ctx, "invite_token_hash = ? AND invite_expires > ? AND status = ?",
		hash, now, domain.StatusInvited)
}

func (r *repository) GetByResetHash(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	return r.getOne(ctx, "reset_token_hash = ? AND reset_expires > ?", hash, now)
}

func (r *repository) Create(ctx context.Context, user domain.User) error {
	return r.db.WithContext(ctx).Create(&user).Error
}

func (r *repository) SetStatus(ctx context.Context, id snowflake.ID, status string) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	).Error
}

func (r *repository) SetResetToken(ctx context.Context, id snowflake.ID, hash string, expires time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE users SET reset_token_hash = ?, reset_expires = ?, updated_at = ? WHERE id = ?`,
		hash, expires, time.Now().UTC(), id,
	).Error
}

// ActivateWithPassword stores a new password hash, activates the account and
// clears the redeemed token pair.
func (r *repository) ActivateWithPassword(ctx context.Context, id snowflake.ID, passwordHash string, clearInvite bool) error {
	if clearInvite {
		return r.db.WithContext(ctx).Exec(
			`UPDATE users
			 SET password_hash = ?, invite_token_hash = NULL, invite_expires = NULL,
			     status = ?, updated_at = ?
			 WHERE id = ?`,
			passwordHash, domain.StatusActive, time.Now().UTC(), id,
		).Error
	}
	return r.db.WithContext(ctx).Exec(
		`UPDATE users
		 SET password_hash = ?, reset_token_hash = NULL, reset_expires = NULL,
		     status = ?, updated_at = ?
		 WHERE id = ?`,
		passwordHash, domain.StatusActive, time.Now().UTC(), id,
	).Error
}

func (r *repository) LinkGoogle(ctx context.Context, id snowflake.ID, googleID string) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE users SET google_id = ?, status = ?, updated_at = ? WHERE id = ?`,
		googleID, domain.StatusActive, time.Now().UTC(), id,
	).Error
}

func (r *repository) ClientName(ctx context.Context, clientID snowflake.ID) (*string, error) {
	var row struct {
		Name string `gorm:"column:name"`
	}
	err := r.db.WithContext(ctx).Raw(`SELECT name FROM clients WHERE id = ?`, clientID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Name == "" {
		return nil, nil
	}
	return &row.Name, nil
}
