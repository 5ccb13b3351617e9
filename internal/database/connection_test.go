// internal/database/connection_test.go
package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Initialize(config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))
	t.Cleanup(func() { Close(db) })
	return db
}

func TestRunMigrationsCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	assert.True(t, db.Migrator().HasTable(&models.Car{}))
	assert.True(t, db.Migrator().HasTable(&models.Photo{}))
	assert.True(t, db.Migrator().HasIndex(&models.Car{}, "idx_cars_source_external"))
}

func TestUniqueSourceExternalID(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.Car{Source: "999", ExternalID: "1"}).Error)
	assert.Error(t, db.Create(&models.Car{Source: "999", ExternalID: "1"}).Error)
	assert.NoError(t, db.Create(&models.Car{Source: "other", ExternalID: "1"}).Error)
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("boom")

	err := WithTransaction(db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Car{Source: "999", ExternalID: "42"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	db.Model(&models.Car{}).Count(&count)
	assert.Zero(t, count)

	err = WithTransaction(db, func(tx *gorm.DB) error {
		return tx.Create(&models.Car{Source: "999", ExternalID: "42"}).Error
	})
	assert.NoError(t, err)
	db.Model(&models.Car{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
