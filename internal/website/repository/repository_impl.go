package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/website/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, website *domain.Website) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO websites (id, account_id, client_id, name, url, platform, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		website.ID,
		website.AccountID,
		website.ClientID,
		website.Name,
		website.URL,
		website.Platform,
		website.Status,
		website.CreatedAt,
		website.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Website, error) {
	var website domain.Website
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, client_id, name, url, platform, status, created_at, updated_at
		 FROM websites WHERE id = ?`, id,
	).Scan(&website).Error
	if err != nil {
		return nil, err
	}
	if website.ID == 0 {
		return nil, nil
	}
	return &website, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]*domain.Website, error) {
	var websites []*domain.Website
	err := db.WithContext(ctx).
		Model(&domain.Website{}).
		Scopes(scope).
		Order("name asc").
		Find(&websites).Error
	if err != nil {
		return nil, err
	}
	return websites, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, website *domain.Website) error {
	return db.WithContext(ctx).Exec(
		`UPDATE websites
		 SET name = ?, url = ?, platform = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		website.Name,
		website.URL,
		website.Platform,
		website.Status,
		website.UpdatedAt,
		website.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM websites WHERE id = ?`, id).Error
}
