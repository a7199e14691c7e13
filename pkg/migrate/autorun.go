package migrate

import (
	"context"
	"fmt"

	"github.com/snapnest/booking-backend/pkg/config"
	"github.com/snapnest/booking-backend/pkg/db"
	"github.com/snapnest/booking-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot in dev when
// BOOKING_AUTO_MIGRATE is set. Other environments migrate through cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "applying embedded migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, Embedded(), "up", logg); err != nil {
		return err
	}
	return nil
}
