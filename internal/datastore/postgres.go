// Package datastore persists species and sightings in PostgreSQL with PostGIS.
//
// Connections are pooled by pgxpool and shared with GORM through the pgx
// database/sql adapter. Repositories take a *gorm.DB so tests can run against
// SQLite where no PostGIS functions are involved.
package datastore

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wildwatch/sightings/internal/conf"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

// Store owns the connection pool and the GORM handle built on it.
type Store struct {
	DB       *gorm.DB
	pool     *pgxpool.Pool
	logger   logger.Logger
	recorder metrics.Recorder
}

// BuildDSN returns a postgres:// URL for the settings. Credentials are escaped.
func BuildDSN(s *conf.DatabaseSettings) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.User, s.Password),
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Path:   "/" + s.Name,
	}

	q := url.Values{}
	if s.SSLMode != "" {
		q.Set("sslmode", s.SSLMode)
	}
	if s.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(s.ConnectTimeout.Seconds())))
	}
	q.Set("application_name", "sightings")
	u.RawQuery = q.Encode()

	return u.String()
}

// Open connects to PostgreSQL, verifies the connection and wraps it in GORM.
// recorder may be nil.
func Open(ctx context.Context, s *conf.DatabaseSettings, log logger.Logger, recorder metrics.Recorder) (*Store, error) {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	dbLog := log.Module("datastore")

	poolConfig, err := pgxpool.ParseConfig(BuildDSN(s))
	if err != nil {
		return nil, dbError(err, "parse_dsn", "host", s.Host, "database", s.Name)
	}

	if s.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(s.MaxOpenConns) //nolint:gosec // validated range
	}
	if s.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(min(s.MaxIdleConns, int(poolConfig.MaxConns))) //nolint:gosec // validated range
	}
	if s.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = s.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, dbError(err, "connect", "host", s.Host, "port", s.Port, "database", s.Name)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, dbError(err, "ping", "host", s.Host, "port", s.Port, "database", s.Name)
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}),
		&gorm.Config{Logger: logger.NewGormLoggerAdapter(dbLog, s.SlowQueryThreshold)},
	)
	if err != nil {
		pool.Close()
		return nil, dbError(err, "gorm_open", "database", s.Name)
	}

	dbLog.Info("connected to database",
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
		logger.String("database", s.Name),
		logger.Int("max_conns", int(poolConfig.MaxConns)))

	return &Store{DB: db, pool: pool, logger: dbLog, recorder: recorder}, nil
}

// NewStore wraps an existing GORM handle, used by tests and tools that manage
// their own connection.
func NewStore(db *gorm.DB, log logger.Logger, recorder metrics.Recorder) *Store {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &Store{DB: db, logger: log.Module("datastore"), recorder: recorder}
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return ErrNotConnected
	}
	if s.pool != nil {
		return s.pool.Ping(ctx)
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats reports pool usage for the health endpoint.
func (s *Store) Stats() (total, idle, maxConns int) {
	if s == nil || s.pool == nil {
		return 0, 0, 0
	}
	st := s.pool.Stat()
	return int(st.TotalConns()), int(st.IdleConns()), int(st.MaxConns())
}

// Close releases all database connections.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return ErrNotConnected
	}

	if s.pool != nil {
		// the pool owns the connections GORM borrows through stdlib
		s.pool.Close()
		s.logger.Debug("database connection pool closed")
		return nil
	}

	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}
	return sqlDB.Close()
}

// Species returns a repository for the species catalog.
func (s *Store) Species() SpeciesRepository {
	return NewSpeciesRepository(s.DB, s.recorder)
}

// Sightings returns a repository for sightings.
func (s *Store) Sightings() SightingRepository {
	return NewSightingRepository(s.DB, s.recorder)
}

// observe records operation count, duration and errors when a recorder is set.
func observe(recorder metrics.Recorder, operation string, start time.Time, err error) {
	if recorder == nil {
		return
	}
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		recorder.RecordError(operation, errorType(err))
	}
	recorder.RecordOperation(operation, status)
	recorder.RecordDuration(operation, time.Since(start).Seconds())
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSpeciesReference), errors.Is(err, ErrConstraintViolation):
		return "constraint"
	case errors.Is(err, ErrLocationWriteFailed):
		return "location_write"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "context"
	default:
		return "query"
	}
}
