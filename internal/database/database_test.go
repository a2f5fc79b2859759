package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNewSQLite_InMemory(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)

	assert.NoError(t, HealthCheck(db))
	assert.NoError(t, Close(db))
}

func TestNewSQLite_EmptyPath(t *testing.T) {
	_, err := NewSQLite("")
	assert.Error(t, err)
}

func TestHealthCheck_Postgres(t *testing.T) {
	sqlDB, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	// gorm pings once while opening
	sqlMock.ExpectPing()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	sqlMock.ExpectPing()
	assert.NoError(t, HealthCheck(db))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHealthCheck_Nil(t *testing.T) {
	assert.Error(t, HealthCheck(nil))
	assert.NoError(t, Close(nil))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
