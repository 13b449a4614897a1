package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/changelog/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO change_log_entries (id, entity_type, entity_id, client_id, user_id, entry_type, title, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.EntityType,
		entry.EntityID,
		entry.ClientID,
		entry.UserID,
		entry.EntryType,
		entry.Title,
		entry.Body,
		entry.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, page pagination.Pagination) ([]*domain.EntryDetail, error) {
	var entries []*domain.EntryDetail
	err := db.WithContext(ctx).
		Table("change_log_entries").
		Select("change_log_entries.*, users.name AS author_name").
		Joins("LEFT JOIN users ON users.id = change_log_entries.user_id").
		Scopes(scope, pagination.ApplyFor("change_log_entries", page)).
		Order("change_log_entries.created_at desc, change_log_entries.id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
