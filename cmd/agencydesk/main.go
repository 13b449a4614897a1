package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/migration"
	"github.com/agencydesk/agencydesk/internal/server"
	"github.com/agencydesk/agencydesk/pkg/db"
	"github.com/agencydesk/agencydesk/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(newSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
