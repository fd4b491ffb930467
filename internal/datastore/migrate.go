package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wildwatch/sightings/internal/datastore/entities"
	"github.com/wildwatch/sightings/internal/logger"
)

// postgisStatements run after AutoMigrate. All are idempotent.
var postgisStatements = []struct {
	name string
	sql  string
}{
	{"location_column", `ALTER TABLE sightings ADD COLUMN IF NOT EXISTS location geography(POINT, 4326)`},
	{"location_index", `CREATE INDEX IF NOT EXISTS idx_sightings_location ON sightings USING GIST (location)`},
}

// Migrate creates or updates the schema: the PostGIS extension, the species
// and sightings tables, the geography column and its spatial index.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return ErrNotConnected
	}
	start := time.Now()

	db := s.DB.WithContext(ctx)

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS postgis`).Error; err != nil {
		return dbError(err, "migrate", "step", "postgis_extension")
	}

	if err := autoMigrate(db); err != nil {
		return err
	}

	for _, stmt := range postgisStatements {
		if err := db.Exec(stmt.sql).Error; err != nil {
			return dbError(err, "migrate", "step", stmt.name)
		}
	}

	s.logger.Info("database schema is up to date",
		logger.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// autoMigrate creates the relational part of the schema. It runs on any
// GORM dialect, which lets repository tests use SQLite.
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.Species{}, &entities.Sighting{}); err != nil {
		return dbError(err, "migrate", "step", "auto_migrate")
	}
	return nil
}
