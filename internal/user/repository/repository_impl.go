package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/user/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const userColumns = `users.id, users.name, users.email, users.role, users.status, users.client_id,
	users.avatar_url, users.google_id, users.created_at, users.updated_at, clients.name AS client_name`

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListUsersRequest) ([]*domain.UserDetail, error) {
	var users []*domain.UserDetail
	stmt := db.WithContext(ctx).
		Table("users").
		Select(userColumns).
		Joins("LEFT JOIN clients ON clients.id = users.client_id")
	if req.Role != "" {
		stmt = stmt.Where("users.role = ?", req.Role)
	}
	if req.Status != "" {
		stmt = stmt.Where("users.status = ?", req.Status)
	}
	err := stmt.Order("users.name asc").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.UserDetail, error) {
	var user domain.UserDetail
	err := db.WithContext(ctx).
		Table("users").
		Select(userColumns).
		Joins("LEFT JOIN clients ON clients.id = users.client_id").
		Where("users.id = ?", id).
		Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *authdomain.User) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users
		 SET name = ?, role = ?, status = ?, client_id = ?, avatar_url = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Role,
		user.Status,
		user.ClientID,
		user.AvatarURL,
		user.UpdatedAt,
		user.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM users WHERE id = ?`, id).Error
}
