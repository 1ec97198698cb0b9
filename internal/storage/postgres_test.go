package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStore_Get(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"value"}).AddRow(`{"name":"a","items":["x"]}`)
	mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).WithArgs("sample").WillReturnRows(rows)

	var got sample
	found, err := s.Get(context.Background(), "sample", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Name: "a", Items: []string{"x"}}, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).WithArgs("carts").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	dst := map[string]int{"keep": 1}
	found, err := s.Get(context.Background(), "carts", &dst)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, map[string]int{"keep": 1}, dst)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Set(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).
		WithArgs("categories", `["Fiscal"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "categories", []string{"Fiscal"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetManyCommitsInKeyOrder(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).WithArgs("carts", `{}`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).WithArgs("orders", `[1]`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.SetMany(context.Background(), map[string]any{
		"orders": []int{1},
		"carts":  map[string]any{},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetManyRollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).WithArgs("carts", `{}`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).WithArgs("orders", `[1]`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.SetMany(context.Background(), map[string]any{
		"orders": []int{1},
		"carts":  map[string]any{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteValueSQL)).WithArgs("currentUser").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "currentUser"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
