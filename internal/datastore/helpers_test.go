package datastore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wildwatch/sightings/internal/datastore/entities"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

// setupTestStore returns a Store backed by in-memory SQLite with the
// relational schema applied. PostGIS paths are covered by the integration tests.
func setupTestStore(t *testing.T) (*Store, *metrics.TestRecorder) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// one connection, otherwise every new connection sees an empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, autoMigrate(db))

	recorder := metrics.NewTestRecorder()
	return NewStore(db, nil, recorder), recorder
}

func insertSpecies(t *testing.T, s *Store, names ...string) []entities.Species {
	t.Helper()

	out := make([]entities.Species, 0, len(names))
	for _, name := range names {
		sp := entities.Species{Name: name}
		require.NoError(t, s.DB.Create(&sp).Error)
		out = append(out, sp)
	}
	return out
}
