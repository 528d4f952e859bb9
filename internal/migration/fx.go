package migration

import (
	"github.com/brisbanesurgical/storefront/internal/config"
	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned migrations are postgres-only; sqlite and mysql
		// deployments fall back to schema sync from the model.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&orderdomain.Order{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
