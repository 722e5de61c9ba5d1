package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/config"
	"github.com/postboxhq/postbox/internal/migration"
	"github.com/postboxhq/postbox/internal/observability"
	"github.com/postboxhq/postbox/internal/scheduler"
	"github.com/postboxhq/postbox/internal/server"
	"github.com/postboxhq/postbox/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional domains
		server.Module,
		scheduler.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
