package main

import (
	"github.com/brisbanesurgical/storefront/internal/config"
	"github.com/brisbanesurgical/storefront/internal/logger"
	"github.com/brisbanesurgical/storefront/internal/migration"
	"github.com/brisbanesurgical/storefront/internal/notification"
	"github.com/brisbanesurgical/storefront/internal/order"
	"github.com/brisbanesurgical/storefront/internal/payment"
	"github.com/brisbanesurgical/storefront/internal/providers"
	"github.com/brisbanesurgical/storefront/internal/receipt"
	"github.com/brisbanesurgical/storefront/internal/server"
	"github.com/brisbanesurgical/storefront/pkg/db"
	"github.com/brisbanesurgical/storefront/pkg/telemetry"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(telemetry.NewMetrics),
		db.Module,
		migration.Module,

		// Functional Domains
		order.Module,
		payment.Module,
		providers.Module,
		receipt.Module,
		notification.Module,

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
