package db

import (
	_ "embed"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed sqlite/schema.sql
var sqliteSchema string

// OpenSQLite opens a gorm handle on a SQLite database and applies the
// schema. Used for local development and repository tests; foreign keys
// must be enabled in the DSN (e.g. "file::memory:?_foreign_keys=on").
func OpenSQLite(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// one connection keeps in-memory databases shared and writes serialized
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.Exec(sqliteSchema).Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return gdb, nil
}

// CloseSQLite releases the connection held by a gorm handle.
func CloseSQLite(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
