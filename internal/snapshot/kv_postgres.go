package snapshot

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const pgUndefinedTable = "42P01"

type PostgresKV struct {
	db *sqlx.DB
}

func NewPostgresKV(db *sqlx.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

// OpenPostgres opens a pgx-backed connection and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *PostgresKV) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, s.db.PingContext)
}

func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.GetContext(ctx, &value, `
			SELECT value
			FROM snapshots
			WHERE key = $1
		`, key)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translate(err)
	}
	return []byte(value), true, nil
}

func (s *PostgresKV) Put(ctx context.Context, key string, value []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO snapshots (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`, key, string(value))
		return translate(err)
	})
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return ErrNotMigrated
	}
	return err
}
