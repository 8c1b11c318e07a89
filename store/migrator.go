package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// The migration system is intentionally small: a fresh database gets the
// full LATEST.sql schema for its driver, and demo mode additionally loads
// seed data. Incremental migrations can be added under
// store/migration/{driver}/ when the schema starts evolving.

//go:embed migration
var migrationFS embed.FS

//go:embed seed
var seedFS embed.FS

const latestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema if needed.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	schemaPath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, latestSchemaFileName)
	buf, err := migrationFS.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %q", schemaPath)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	slog.Info("database schema initialized", "driver", s.profile.Driver)

	if s.profile.Mode == "demo" {
		if err := s.seed(ctx); err != nil {
			return errors.Wrap(err, "failed to seed demo data")
		}
	}

	return nil
}

func (s *Store) seed(ctx context.Context) error {
	seedPath := fmt.Sprintf("seed/%s/SEED.sql", s.profile.Driver)
	buf, err := seedFS.ReadFile(seedPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read seed file %q", seedPath)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply seed data")
	}
	slog.Info("demo seed data loaded")
	return nil
}
