// v0
// internal/storage/storage.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"nrgchamp/noc-dashboard/internal/config"
)

// QueryObserver records store latency per logical query. It is
// satisfied by *observability.Metrics.
type QueryObserver interface {
	ObserveQuery(query string, d time.Duration, err error)
}

// SQLStore serves telemetry and credential lookups from a relational
// database. Connections are taken from the database/sql pool per query
// and released when rows are closed.
type SQLStore struct {
	db  *sql.DB
	obs QueryObserver
}

// New wraps an open database handle.
func New(db *sql.DB, obs QueryObserver) *SQLStore {
	return &SQLStore{db: db, obs: obs}
}

// Open connects to the configured database and verifies it with a ping.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func dataSource(cfg config.Database) (driver, dsn string, err error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		return "mysql", mc.FormatDSN(), nil
	case config.DriverSQLite:
		return "sqlite", "file:" + cfg.Path + "?_pragma=busy_timeout(5000)", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) observe(query string, start time.Time, err error) {
	if s.obs != nil {
		s.obs.ObserveQuery(query, time.Since(start), err)
	}
}
