package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, sqlMock
}

func TestSQLStore_Postgres_Get(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := &SQLStore{db: db}

	sqlMock.ExpectQuery(`SELECT \* FROM "records" WHERE record_key = \$1 ORDER BY "records"."record_key" LIMIT \$2`).
		WithArgs(KeySalesReps, 1).
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "value", "updated_at"}).
			AddRow(KeySalesReps, `["RASHA"]`, time.Now()))

	value, err := s.Get(context.Background(), KeySalesReps)
	require.NoError(t, err)
	assert.Equal(t, `["RASHA"]`, string(value))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSQLStore_Postgres_GetMissing(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := &SQLStore{db: db}

	sqlMock.ExpectQuery(`SELECT \* FROM "records" WHERE record_key = \$1`).
		WithArgs(KeyLeads, 1).
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "value", "updated_at"}))

	_, err := s.Get(context.Background(), KeyLeads)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
