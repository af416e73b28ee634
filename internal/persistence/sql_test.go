package persistence

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestSQLStore_Get(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSQLStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT entry_value FROM kv_entries WHERE entry_key = $1")).
		WithArgs("ticketapp_session").
		WillReturnRows(sqlmock.NewRows([]string{"entry_value"}).AddRow(`{"name":"Ada"}`))

	got, err := store.Get(context.Background(), "ticketapp_session")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ada"}`, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSQLStore(db)

	mock.ExpectQuery("SELECT entry_value FROM kv_entries").
		WithArgs("ticketapp_session").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "ticketapp_session")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSQLStore_GetBackendError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSQLStore(db)

	mock.ExpectQuery("SELECT entry_value FROM kv_entries").
		WillReturnError(errors.New("connection reset"))

	_, err := store.Get(context.Background(), "ticketapp_session")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}

func TestSQLStore_SetUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSQLStore(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO kv_entries (entry_key,entry_value,updated_at) VALUES ($1,$2,CURRENT_TIMESTAMP) ON CONFLICT (entry_key) DO UPDATE SET")).
		WithArgs("ticketapp_users", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Set(context.Background(), "ticketapp_users", "[]"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_UsesQuestionPlaceholders(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSQLiteStore(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_entries WHERE entry_key = ?")).
		WithArgs("tickets_ada@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), "tickets_ada@example.com"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_NilDB(t *testing.T) {
	err := RunMigrations(nil, "postgres", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is nil")
}
