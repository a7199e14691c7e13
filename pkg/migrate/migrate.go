package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/snapnest/booking-backend/pkg/logger"
)

// DefaultDir is where new migrations are created during development.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Embedded returns the catalog and booking request schema compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return sub
}

// Source picks the migration set: a directory on disk when dir is given,
// otherwise the embedded one.
func Source(dir string) fs.FS {
	if strings.TrimSpace(dir) == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// Run executes up, down or status against db.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, command string, logg *logger.Logger) error {
	provider, err := newProvider(db, fsys)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		logResults(ctx, logg, results)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
	case "down":
		result, err := provider.Down(ctx)
		if result != nil {
			logResults(ctx, logg, []*goose.MigrationResult{result})
		}
		if err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		for _, st := range statuses {
			fields := map[string]any{"version": st.Source.Version, "path": st.Source.Path, "state": string(st.State)}
			if !st.AppliedAt.IsZero() {
				fields["applied_at"] = st.AppliedAt
			}
			logInfo(ctx, logg, fields, "migration status")
		}
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, fsys fs.FS, targetVersion string, logg *logger.Logger) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	provider, err := newProvider(db, fsys)
	if err != nil {
		return err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil
	case current < target:
		results, err = provider.UpTo(ctx, target)
	default:
		results, err = provider.DownTo(ctx, target)
	}
	logResults(ctx, logg, results)
	if err != nil {
		return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return nil
}

func newProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migration source is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

func logResults(ctx context.Context, logg *logger.Logger, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fields := map[string]any{
			"version":     r.Source.Version,
			"path":        r.Source.Path,
			"direction":   r.Direction,
			"duration_ms": r.Duration.Milliseconds(),
		}
		if r.Error != nil {
			if logg != nil {
				logg.Error(logg.WithFields(ctx, fields), "migration failed", r.Error)
			}
			continue
		}
		logInfo(ctx, logg, fields, "migration applied")
	}
}

func logInfo(ctx context.Context, logg *logger.Logger, fields map[string]any, msg string) {
	if logg == nil {
		return
	}
	logg.Info(logg.WithFields(ctx, fields), msg)
}
