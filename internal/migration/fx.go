package migration

import (
	"github.com/aquabill/aquabill/internal/config"
	"github.com/aquabill/aquabill/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoDistrict(conn)
		}
		return nil
	}),
)
