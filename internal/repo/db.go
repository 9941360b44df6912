// Package repo is the persistence layer of the rental backend. It owns the
// SQLite bootstrap, the sequence counters behind the external IDs, and the
// GORM queries for users, listings, rental requests, and idempotency
// records.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/nesthunt/go-rental-backend/internal/domain"
)

// OpenSQLite opens (or creates) the database file and applies the PRAGMAs
// and pool settings the API runs with.
func OpenSQLite(path string) (*gorm.DB, error) {
	// a missing parent directory surfaces as sqlite "out of memory (14)"
	// on some platforms, so check it up front
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Listing{},
		&domain.Request{},
		&domain.Idempotency{},
		&Sequence{},
	)
}
