package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glamora/internal/clock"
	"github.com/smallbiznis/glamora/internal/config"
	"github.com/smallbiznis/glamora/internal/migration"
	"github.com/smallbiznis/glamora/internal/observability"
	"github.com/smallbiznis/glamora/internal/server"
	"github.com/smallbiznis/glamora/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
