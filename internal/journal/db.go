package journal

import (
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GetDatabase opens the sqlite journal database; ":memory:" keeps it for the process lifetime only.
func GetDatabase(dsn string, debug bool) (*gorm.DB, error) {
	conf := &gorm.Config{}

	if !debug {
		conf.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		conf.Logger = logger.Default.LogMode(logger.Info)
	}

	slog.Info("open sqlite database " + dsn)

	db, err := gorm.Open(sqlite.Open(dsn), conf)
	if err != nil {
		slog.Error("db open error", slog.Any("error", err))
		return nil, err
	}

	// in-memory sqlite is per connection
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
