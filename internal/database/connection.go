package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"queue-manager-api/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// sqliteOptions are appended to every database path
const sqliteOptions = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// DSN returns the go-sqlite3 data source name for a database file
func DSN(path string) string {
	return fmt.Sprintf("file:%s?%s", path, sqliteOptions)
}

// ConnectionManager owns the database handle of one application instance
type ConnectionManager struct {
	config config.DatabaseConfig
	db     *sql.DB
	logger *logrus.Logger
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(cfg config.DatabaseConfig, logger *logrus.Logger) *ConnectionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &ConnectionManager{
		config: cfg,
		logger: logger,
	}
}

// Open connects to the configured database and applies pending migrations
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *logrus.Logger) (*ConnectionManager, error) {
	cm := NewConnectionManager(cfg, logger)
	if err := cm.Connect(ctx); err != nil {
		return nil, err
	}

	if err := cm.MigrationManager().RunMigrations(ctx); err != nil {
		_ = cm.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return cm, nil
}

// Connect establishes the database connection
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	if cm.db != nil {
		return fmt.Errorf("database connection already established")
	}

	dbPath, err := filepath.Abs(cm.config.Path)
	if err != nil {
		return fmt.Errorf("failed to get absolute database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", DSN(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cm.config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	maxIdle := cm.config.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.config.Path = dbPath
	cm.db = db
	cm.logger.WithFields(logrus.Fields{
		"db_path":        dbPath,
		"max_open_conns": maxOpen,
	}).Info("Database connection established")
	return nil
}

// GetDB returns the database connection
func (cm *ConnectionManager) GetDB() *sql.DB {
	return cm.db
}

// Path returns the absolute database file path once connected
func (cm *ConnectionManager) Path() string {
	return cm.config.Path
}

// MigrationManager returns a migration manager for this database file
func (cm *ConnectionManager) MigrationManager() *MigrationManager {
	return NewMigrationManager(cm.config.Path, cm.logger)
}

// Close closes the database connection
func (cm *ConnectionManager) Close() error {
	if cm.db == nil {
		return nil
	}

	err := cm.db.Close()
	cm.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	cm.logger.Info("Database connection closed")
	return nil
}

// Ping tests the database connection
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := cm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// HealthCheck pings the database, runs a trivial query and checks foreign keys are enforced
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := cm.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("test query returned unexpected result: %d", result)
	}

	var fkEnabled int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to check foreign key status: %w", err)
	}

	if fkEnabled != 1 {
		return fmt.Errorf("foreign keys are not enabled")
	}

	return nil
}
