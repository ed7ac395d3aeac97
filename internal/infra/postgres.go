package infra

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/Vovarama1992/sightings/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the part of *pgxpool.Pool the repositories need. Every call acquires
// a pooled connection for one statement and releases it afterwards.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPoolConfig parses DATABASE_URL and applies the deployment transport.
// Production connects over TLS without verifying the server certificate.
func NewPoolConfig(cfg config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pc.MaxConns = cfg.DBMaxConns

	if cfg.Production() {
		pc.ConnConfig.TLSConfig = &tls.Config{
			ServerName:         pc.ConnConfig.Host,
			InsecureSkipVerify: true, //nolint:gosec // managed Postgres uses self-signed certs
		}
	} else {
		pc.ConnConfig.TLSConfig = nil
	}
	pc.ConnConfig.Fallbacks = nil

	return pc, nil
}

// NewPgxPool builds the pool without dialing; connections are opened on
// first use so the HTTP server can start while the database is still down.
func NewPgxPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pc, err := NewPoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, pc)
}
