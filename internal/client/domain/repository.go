package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Client, error)
	List(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]*Client, error)
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	AddManager(ctx context.Context, db *gorm.DB, assignment ClientManager) error
	RemoveManager(ctx context.Context, db *gorm.DB, clientID, userID snowflake.ID) error
	ManagersFor(ctx context.Context, db *gorm.DB, clientIDs []snowflake.ID) (map[snowflake.ID][]ManagerInfo, error)
	StatsFor(ctx context.Context, db *gorm.DB, clientIDs []snowflake.ID) (map[snowflake.ID]ClientStats, error)
}
