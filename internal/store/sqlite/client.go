package sqlite

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the sqlite file at path and migrates the documents table
func Open(path string, log *zap.Logger) (*gorm.DB, error) {
	log.Info("Opening sqlite document store", zap.String("path", path))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	// sqlite allows a single writer; one connection avoids SQLITE_BUSY under concurrent toggles
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&socialDocument{}); err != nil {
		return nil, fmt.Errorf("failed to migrate social documents: %w", err)
	}

	log.Info("Sqlite document store ready")
	return db, nil
}
