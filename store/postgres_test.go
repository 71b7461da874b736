package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresBackend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	backend := NewPostgresBackend(db)
	s := New(backend)
	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS app_state").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.Init(ctx))

	// Nothing stored yet.
	mock.ExpectQuery("SELECT data FROM app_state WHERE id = \\$1").
		WithArgs(stateRowID).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))
	doc, status := s.Load(ctx)
	assert.Equal(t, LoadAbsent, status)
	assert.Equal(t, NewDocument(), doc)

	// A kiss is added: read, then upsert.
	mock.ExpectQuery("SELECT data FROM app_state WHERE id = \\$1").
		WithArgs(stateRowID).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"kissCount": 2}`)))
	mock.ExpectExec("INSERT INTO app_state .* ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs(stateRowID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved := s.Update(ctx, func(d *Document) bool {
		d.KissCount++
		return true
	})
	assert.True(t, saved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendReadErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	backend := NewPostgresBackend(db)

	mock.ExpectQuery("SELECT data FROM app_state").WillReturnRows(sqlmock.NewRows([]string{"data"}))
	_, err = backend.Read(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery("SELECT data FROM app_state").WillReturnError(errors.New("connection reset"))
	_, err = backend.Read(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	// The store degrades a read failure to the default document.
	mock.ExpectQuery("SELECT data FROM app_state").WillReturnError(errors.New("connection reset"))
	doc, status := New(backend).Load(context.Background())
	assert.Equal(t, LoadCorrupt, status)
	assert.Equal(t, NewDocument(), doc)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO app_state").WillReturnError(errors.New("read-only transaction"))

	s := New(NewPostgresBackend(db))
	assert.False(t, s.Save(context.Background(), NewDocument()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendPreservesUndecodableRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(NewPostgresBackend(db))

	mock.ExpectQuery("SELECT data FROM app_state").
		WithArgs(stateRowID).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"kissCount": {"not": "a number"}}`)))
	mock.ExpectExec("INSERT INTO app_state .* SELECT \\$1, data, NOW\\(\\) FROM app_state WHERE id = \\$2").
		WithArgs(preservedRowID, stateRowID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO app_state .* VALUES").
		WithArgs(stateRowID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved := s.Update(context.Background(), func(d *Document) bool {
		d.KissCount++
		return true
	})
	assert.True(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
