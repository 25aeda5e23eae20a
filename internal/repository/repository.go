package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database defines the subset of pgxpool.Pool used by the repository.
// pgxmock implements the same surface, which keeps the repository testable
// without a live server.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository provides access to the uploads, points, distances and tasks
// relations. All bulk writes are committed per step so a crash between steps
// leaves state consistent with "step not yet done".
type Repository struct {
	db  Database
	log *slog.Logger
	qb  sq.StatementBuilderType
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log,
		qb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// NewDatabase creates a connection pool for the given PostgreSQL instance
// and verifies it with a ping.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	connURL := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     name,
		RawQuery: "sslmode=disable",
	}

	pool, err := pgxpool.New(ctx, connURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return pool, nil
}
