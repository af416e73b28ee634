package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const (
	kvTable     = "kv_entries"
	kvKeyCol    = "entry_key"
	kvValueCol  = "entry_value"
	kvUpdateCol = "updated_at"
)

// SQLStore keeps entries in the kv_entries table. The same queries serve
// Postgres and SQLite; only the placeholder format differs.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewSQLStore builds a store for Postgres-style ($1) placeholders.
func NewSQLStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, sq.Dollar)
}

// NewSQLiteStore builds a store for SQLite-style (?) placeholders.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, sq.Question)
}

func newSQLStore(db *sql.DB, format sq.PlaceholderFormat) *SQLStore {
	return &SQLStore{db: db, builder: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	query, args, err := s.builder.
		Select(kvValueCol).
		From(kvTable).
		Where(sq.Eq{kvKeyCol: key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build get query: %w", err)
	}

	var val string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&val); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query, args, err := s.builder.
		Insert(kvTable).
		Columns(kvKeyCol, kvValueCol, kvUpdateCol).
		Values(key, value, sq.Expr("CURRENT_TIMESTAMP")).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s",
			kvKeyCol, kvValueCol, kvValueCol, kvUpdateCol, kvUpdateCol)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query, args, err := s.builder.
		Delete(kvTable).
		Where(sq.Eq{kvKeyCol: key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
