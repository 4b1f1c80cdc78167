package main

import (
	"github.com/aquabill/aquabill/internal/config"
	"github.com/aquabill/aquabill/internal/logger"
	"github.com/aquabill/aquabill/internal/migration"
	"github.com/aquabill/aquabill/internal/server"
	"github.com/aquabill/aquabill/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,

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
