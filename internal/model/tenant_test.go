package model

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestTenantDeactivateCascadesToUsers(t *testing.T) {
	db, mock := newMockDB(t)
	tenant := &Tenant{ID: 42, IsActive: true}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tenants" SET`).
		WithArgs(false, sqlmock.AnyArg(), tenant.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).
		WithArgs(false, sqlmock.AnyArg(), tenant.ID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, tenant.Deactivate(db))
	assert.False(t, tenant.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantDeactivateRollsBackWhenUserUpdateFails(t *testing.T) {
	db, mock := newMockDB(t)
	tenant := &Tenant{ID: 42, IsActive: true}
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tenants" SET`).
		WithArgs(false, sqlmock.AnyArg(), tenant.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).
		WithArgs(false, sqlmock.AnyArg(), tenant.ID).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := tenant.Deactivate(db)
	require.ErrorIs(t, err, boom)
	assert.True(t, tenant.IsActive, "flag must not flip when the cascade fails")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantActivateTouchesOnlyTheTenant(t *testing.T) {
	db, mock := newMockDB(t)
	tenant := &Tenant{ID: 42, IsActive: false}

	mock.ExpectExec(`UPDATE "tenants" SET`).
		WithArgs(true, sqlmock.AnyArg(), tenant.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, tenant.Activate(db))
	assert.True(t, tenant.IsActive)
	// Users of the tenant stay deactivated; no second statement is issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}
