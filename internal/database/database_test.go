package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               gormlogger.Discard,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestConfigure_SetsPoolLimits(t *testing.T) {
	db, _ := newMockGorm(t)
	require.NoError(t, Configure(db, PoolOptions{MaxConns: 10, IdleTimeout: 30 * time.Second}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestPing(t *testing.T) {
	db, mock := newMockGorm(t)

	mock.ExpectPing()
	assert.NoError(t, Ping(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.ErrorContains(t, Ping(context.Background(), db), "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_DoesNotDialEagerly(t *testing.T) {
	db, err := Open("postgres://u:p@127.0.0.1:1/none?connect_timeout=1", PoolOptions{MaxConns: 2}, gormlogger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 2, sqlDB.Stats().MaxOpenConnections)
}
