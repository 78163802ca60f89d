package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"queue-manager-api/internal/config"
	"queue-manager-api/internal/database"
)

func main() {
	var (
		dbPath  = flag.String("db", "./data/queue.db", "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status, validate")
		steps   = flag.Int("steps", 1, "Number of migrations to roll back with -action=down")
		backup  = flag.Bool("backup", true, "Snapshot the database file before up and down")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	cfg := config.DatabaseConfig{Path: absDBPath, MaxOpenConns: 1, MaxIdleConns: 1}
	migrations := database.NewMigrationManager(absDBPath, logger).WithBackup(*backup)

	switch *action {
	case "up":
		err = migrations.RunMigrations(context.Background())
	case "down":
		err = migrations.RollbackMigration(*steps)
	case "status":
		err = showMigrationStatus(migrations)
	case "validate":
		err = validateSchema(cfg, logger)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}
	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(migrations *database.MigrationManager) error {
	status, err := migrations.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}

func validateSchema(cfg config.DatabaseConfig, logger *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cm := database.NewConnectionManager(cfg, logger)
	if err := cm.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cm.Close()

	if err := database.ValidateSchema(ctx, cm.GetDB()); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	fmt.Println("Schema validation passed successfully")
	return nil
}
