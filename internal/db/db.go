package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var DB *gorm.DB

// Options selects the driver and location of the store. Schema only applies
// to postgres, where every table is created under it.
type Options struct {
	Driver   string
	DSN      string
	Schema   string
	LogLevel logger.LogLevel
}

// Open connects to the configured store and ensures its schema exists.
func Open(opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	// Log queries slower than 100ms.
	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	cfg := &gorm.Config{
		Logger:         lg,
		TranslateError: true,
	}

	switch opts.Driver {
	case DriverSQLite:
		d, err := gorm.Open(sqlite.Open(opts.DSN), cfg)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		sqlDB, err := d.DB()
		if err != nil {
			return nil, fmt.Errorf("getting sql.DB: %w", err)
		}
		// One connection keeps :memory: databases and PRAGMAs alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		if err := d.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
		return d, nil

	case DriverPostgres, "":
		if opts.Schema != "" {
			cfg.NamingStrategy = schema.NamingStrategy{TablePrefix: opts.Schema + "."}
		}
		d, err := gorm.Open(postgres.Open(opts.DSN), cfg)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		sqlDB, err := d.DB()
		if err != nil {
			return nil, fmt.Errorf("getting sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		if opts.Schema != "" {
			if err := EnsureSchema(d, opts.Schema); err != nil {
				return nil, fmt.Errorf("ensuring schema %s: %w", opts.Schema, err)
			}
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Connect opens the store into DB and exits the process on failure.
func Connect(opts Options) {
	d, err := Open(opts)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	DB = d
	log.Printf("Connected to database (%s)", opts.Driver)
}
