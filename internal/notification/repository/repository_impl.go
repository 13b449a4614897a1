package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, user_id, type, message, read, entity_type, entity_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Message,
		notification.Read,
		notification.EntityType,
		notification.EntityID,
		notification.CreatedAt,
	).Error
}

// Prune drops a recipient's rows beyond the newest keep entries.
func (r *repo) Prune(ctx context.Context, db *gorm.DB, userID snowflake.ID, keep int) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM notifications
		 WHERE user_id = ?
		   AND id NOT IN (
		     SELECT id FROM notifications
		     WHERE user_id = ?
		     ORDER BY created_at DESC, id DESC
		     LIMIT ?)`,
		userID, userID, keep,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool, page pagination.Pagination) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ?", userID)
	if unreadOnly {
		stmt = stmt.Where("read = ?", false)
	}
	err := stmt.
		Scopes(pagination.Apply(page)).
		Order("created_at desc, id desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) UnreadCount(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE notifications SET read = TRUE WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notifications SET read = TRUE WHERE user_id = ? AND read = FALSE`,
		userID,
	).Error
}

func (r *repo) ActiveOwnerIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM users WHERE role = 'owner' AND status = 'active'`,
	).Scan(&ids).Error
	return ids, err
}

func (r *repo) ManagerIDsForClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT user_id FROM client_managers WHERE client_id = ?`,
		clientID,
	).Scan(&ids).Error
	return ids, err
}

func (r *repo) ContributorIDsForCampaign(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT user_id FROM campaign_contributors WHERE campaign_id = ?`,
		campaignID,
	).Scan(&ids).Error
	return ids, err
}

func (r *repo) ActivePortalUserIDs(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM users WHERE client_id = ? AND role = 'client' AND status = 'active'`,
		clientID,
	).Scan(&ids).Error
	return ids, err
}
