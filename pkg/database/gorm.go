package database

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes the SQL logger. Verbose logs every statement, otherwise only slow ones and errors.
type Options struct {
	Verbose       bool
	SlowThreshold time.Duration
}

func getLogger(opts Options) logger.Interface {
	level := logger.Warn
	if opts.Verbose {
		level = logger.Info
	}
	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // keep message text out of the SQL log
			Colorful:                  opts.Verbose,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDBFromDSN(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(opts),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureExtensions creates the extensions the schema depends on (pgvector, uuid generation).
func EnsureExtensions(ctx context.Context, db *gorm.DB) error {
	for _, ext := range []string{"vector", "pgcrypto"} {
		if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS " + ext).Error; err != nil {
			return err
		}
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
