// Package database provides PostgreSQL connection management with lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Start pings the database as a startup hook and closes the pool on shutdown.
	Start(lc *lifecycle.Coordinator) error
	// Wait blocks until the startup ping has resolved and returns its error.
	Wait(ctx context.Context) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	dsn         string
	connTimeout time.Duration
	reachable   *lifecycle.Gate
}

// New opens a pool for cfg. No connection is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		dsn:         cfg.Redacted(),
		connTimeout: cfg.ConnTimeoutDuration(),
		reachable:   lifecycle.NewGate("database"),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Wait(ctx context.Context) error {
	return d.reachable.Wait(ctx)
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection", "dsn", d.dsn)

	lc.OnStartup(func() {
		err := d.ping(lc.Context())
		if err != nil {
			d.logger.Error("database ping failed", "error", err)
		} else {
			d.logger.Info("database connection established")
		}
		d.reachable.Open(err)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}

func (d *database) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()
	return d.conn.PingContext(ctx)
}
