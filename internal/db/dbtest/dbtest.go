// Package dbtest swaps db.DB for an in-memory SQLite store during tests.
package dbtest

import (
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veritasos/ordem-backend/internal/db"
)

// Setup opens a fresh in-memory store, migrates models into it and installs
// it as db.DB until the test ends.
func Setup(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	testDB, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: ":memory:", LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	if err := testDB.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	original := db.DB
	db.DB = testDB
	t.Cleanup(func() {
		if sqlDB, err := testDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		db.DB = original
	})
	return testDB
}
