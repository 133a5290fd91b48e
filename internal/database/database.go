package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options selects the driver and tunes the connection pool.
type Options struct {
	Driver       string
	Path         string // sqlite file
	DSN          string // mysql / postgres
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     logger.LogLevel
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (and migrates) a SQLite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(Options{Driver: DriverSQLite, Path: dbPath, LogLevel: logger.Info})
}

// Open connects with the configured driver, sizes the pool and migrates all entities.
func Open(opts Options) (*Database, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	configurePool(sqlDB, opts)

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.School{},
		&entities.Subject{},
		&entities.Publication{},
		&entities.BookName{},
		&entities.BookEntry{},
		&entities.Booklist{},
		&entities.BooklistItem{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully (driver: %s)", driverName(opts.Driver))

	return &Database{DB: db}, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch driverName(opts.Driver) {
	case DriverSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite database path is required")
		}
		return sqlite.Open(opts.Path + "?_busy_timeout=5000"), nil
	case DriverMySQL:
		if opts.DSN == "" {
			return nil, fmt.Errorf("mysql DSN is required")
		}
		return mysql.Open(opts.DSN), nil
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		return postgres.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func driverName(driver string) string {
	if driver == "" {
		return DriverSQLite
	}
	return driver
}

type poolConfigurer interface {
	SetMaxOpenConns(n int)
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
}

func configurePool(pool poolConfigurer, opts Options) {
	// SQLite has a single writer; one connection avoids "database is locked".
	if driverName(opts.Driver) == DriverSQLite {
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
		return
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen / 2
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)
	pool.SetConnMaxLifetime(time.Hour)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks connectivity of the underlying pool.
func (d *Database) Ping() error {
	return d.PingContext(context.Background())
}

func (d *Database) PingContext(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats reports the connection pool counters.
func (d *Database) Stats() (sql.DBStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}
