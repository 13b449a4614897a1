package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/timeentry/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.TimeEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO time_entries (id, user_id, campaign_id, client_id, website_id, date, hours, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.CampaignID,
		entry.ClientID,
		entry.WebsiteID,
		entry.Date,
		entry.Hours,
		entry.Description,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, campaign_id, client_id, website_id, date, hours, description, created_at, updated_at
		 FROM time_entries WHERE id = ?`, id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, page pagination.Pagination) ([]*domain.EntryDetail, error) {
	var entries []*domain.EntryDetail
	err := db.WithContext(ctx).
		Table("time_entries").
		Select(`time_entries.*,
		        users.name AS user_name,
		        campaigns.name AS campaign_name,
		        clients.name AS client_name`).
		Joins("JOIN users ON users.id = time_entries.user_id").
		Joins("JOIN campaigns ON campaigns.id = time_entries.campaign_id").
		Joins("JOIN clients ON clients.id = time_entries.client_id").
		Scopes(scope, pagination.ApplyFor("time_entries", page)).
		Order("time_entries.created_at desc, time_entries.id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) SumHours(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (float64, error) {
	var total *float64
	err := db.WithContext(ctx).
		Table("time_entries").
		Select("SUM(time_entries.hours)").
		Scopes(scope).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.TimeEntry) error {
	return db.WithContext(ctx).Exec(
		`UPDATE time_entries
		 SET date = ?, hours = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		entry.Date,
		entry.Hours,
		entry.Description,
		entry.UpdatedAt,
		entry.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM time_entries WHERE id = ?`, id).Error
}
