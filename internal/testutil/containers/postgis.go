//go:build integration

// Package containers starts throwaway backing services for integration tests.
package containers

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/wildwatch/sightings/internal/conf"
	"github.com/wildwatch/sightings/internal/datastore"
)

// PostGISImage is the database image used by integration tests.
const PostGISImage = "postgis/postgis:16-3.4"

// PostGISContainer wraps a testcontainers PostgreSQL instance with PostGIS
// and a migrated Store connected to it.
type PostGISContainer struct {
	Container testcontainers.Container
	DSN       string
	Settings  *conf.DatabaseSettings
	Store     *datastore.Store
}

// NewPostGISContainer starts PostGIS, connects a Store and runs migrations.
// The container is terminated when the test finishes.
func NewPostGISContainer(t *testing.T) *PostGISContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, PostGISImage,
		tcpostgres.WithDatabase("sightings_test"),
		tcpostgres.WithUsername("sightings"),
		tcpostgres.WithPassword("sightings"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate postgis container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgis connection string: %v", err)
	}

	settings, err := settingsFromDSN(dsn)
	if err != nil {
		t.Fatalf("failed to parse postgis connection string: %v", err)
	}

	store, err := datastore.Open(ctx, settings, nil, nil)
	if err != nil {
		t.Fatalf("failed to connect to postgis: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate postgis schema: %v", err)
	}

	return &PostGISContainer{
		Container: container,
		DSN:       dsn,
		Settings:  settings,
		Store:     store,
	}
}

// Truncate empties both tables and resets their id sequences.
// Use between tests to ensure isolation.
func (p *PostGISContainer) Truncate(ctx context.Context) error {
	return p.Store.DB.WithContext(ctx).
		Exec("TRUNCATE sightings, species RESTART IDENTITY CASCADE").Error
}

func settingsFromDSN(dsn string) (*conf.DatabaseSettings, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return nil, err
	}
	password, _ := u.User.Password()

	return &conf.DatabaseSettings{
		Host:         u.Hostname(),
		Port:         port,
		Name:         u.Path[1:],
		User:         u.User.Username(),
		Password:     password,
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 1,
	}, nil
}
