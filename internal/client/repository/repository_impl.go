package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/client/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (id, name, slug, status, logo_url, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.Name,
		client.Slug,
		client.Status,
		client.LogoURL,
		client.Notes,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, status, logo_url, notes, created_at, updated_at
		 FROM clients WHERE id = ?`, id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, status, logo_url, notes, created_at, updated_at
		 FROM clients WHERE slug = ?`, slug,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]*domain.Client, error) {
	var clients []*domain.Client
	err := db.WithContext(ctx).
		Model(&domain.Client{}).
		Scopes(scope).
		Order("name asc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients
		 SET name = ?, slug = ?, status = ?, logo_url = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		client.Name,
		client.Slug,
		client.Status,
		client.LogoURL,
		client.Notes,
		client.UpdatedAt,
		client.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM clients WHERE id = ?`, id).Error
}

func (r *repo) AddManager(ctx context.Context, db *gorm.DB, assignment domain.ClientManager) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO client_managers (id, client_id, user_id)
		 VALUES (?, ?, ?)
		 ON CONFLICT (client_id, user_id) DO NOTHING`,
		assignment.ID,
		assignment.ClientID,
		assignment.UserID,
	).Error
}

func (r *repo) RemoveManager(ctx context.Context, db *gorm.DB, clientID, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM client_managers WHERE client_id = ? AND user_id = ?`,
		clientID, userID,
	).Error
}

func (r *repo) ManagersFor(ctx context.Context, db *gorm.DB, clientIDs []snowflake.ID) (map[snowflake.ID][]domain.ManagerInfo, error) {
	out := make(map[snowflake.ID][]domain.ManagerInfo, len(clientIDs))
	if len(clientIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ClientID  snowflake.ID `gorm:"column:client_id"`
		ID        snowflake.ID `gorm:"column:id"`
		Name      string       `gorm:"column:name"`
		Email     string       `gorm:"column:email"`
		AvatarURL *string      `gorm:"column:avatar_url"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT cm.client_id, u.id, u.name, u.email, u.avatar_url
		 FROM client_managers cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.client_id IN ?
		 ORDER BY u.name asc`,
		clientIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ClientID] = append(out[row.ClientID], domain.ManagerInfo{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			AvatarURL: row.AvatarURL,
		})
	}
	return out, nil
}

func (r *repo) StatsFor(ctx context.Context, db *gorm.DB, clientIDs []snowflake.ID) (map[snowflake.ID]domain.ClientStats, error) {
	out := make(map[snowflake.ID]domain.ClientStats, len(clientIDs))
	if len(clientIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ClientID  snowflake.ID `gorm:"column:client_id"`
		Accounts  int64        `gorm:"column:accounts"`
		Websites  int64        `gorm:"column:websites"`
		Campaigns int64        `gorm:"column:campaigns"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT c.id AS client_id,
		        (SELECT COUNT(*) FROM accounts a WHERE a.client_id = c.id)  AS accounts,
		        (SELECT COUNT(*) FROM websites w WHERE w.client_id = c.id)  AS websites,
		        (SELECT COUNT(*) FROM campaigns cn WHERE cn.client_id = c.id) AS campaigns
		 FROM clients c
		 WHERE c.id IN ?`,
		clientIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ClientID] = domain.ClientStats{
			AccountCount:  row.Accounts,
			WebsiteCount:  row.Websites,
			CampaignCount: row.Campaigns,
		}
	}
	return out, nil
}
