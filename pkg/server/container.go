package server

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"queue-manager-api/internal/config"
	"queue-manager-api/internal/database"
	"queue-manager-api/internal/middleware"
	"queue-manager-api/internal/repositories"
	"queue-manager-api/internal/repositories/sqlite"
	"queue-manager-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Repositories repositories.RepositoryManager
	Services     *services.ServiceContainer

	// AuthService is nil when JWT_SECRET is unset
	AuthService *middleware.AuthService

	db *database.ConnectionManager
}

// NewContainer opens the database, applies migrations and wires repositories and services
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	cm, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repos := sqlite.NewRepositoryManager(cm.GetDB(), logger)

	serviceContainer, err := services.NewServiceContainer(repos)
	if err != nil {
		cm.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}
	if err := serviceContainer.Validate(); err != nil {
		cm.Close()
		return nil, fmt.Errorf("invalid service container: %w", err)
	}

	container := &Container{
		Config:       cfg,
		Repositories: repos,
		Services:     serviceContainer,
		db:           cm,
	}

	if cfg.JWT.Secret != "" {
		container.AuthService = middleware.NewAuthService(&middleware.AuthConfig{
			JWTSecret:     cfg.JWT.Secret,
			TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		})
	}

	return container, nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
