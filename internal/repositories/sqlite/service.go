package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const serviceColumns = `id, name, description, duration_minutes, price, active, created_at, updated_at`

// ServiceRepository implements repositories.ServiceRepository for SQLite
type ServiceRepository struct {
	*BaseRepository[models.Service]
}

// NewServiceRepository creates a new SQLite service repository
func NewServiceRepository(db *sql.DB, logger *logrus.Logger) repositories.ServiceRepository {
	return &ServiceRepository{
		BaseRepository: NewBaseRepository[models.Service](db, "services", "service", logger),
	}
}

// Create creates a new service
func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if err := service.Validate(); err != nil {
		return repositories.ValidationError("service", service.ID, err)
	}

	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		service.ID,
		service.Name,
		service.Description,
		service.DurationMinutes,
		service.Price,
		service.Active,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return r.translateError("create", service.Name, err)
	}

	return nil
}

// GetByID retrieves a service by ID
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	service, err := scanService(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("service", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "service", id, err)
	}

	return service, nil
}

// GetByName retrieves a service by its unique name
func (r *ServiceRepository) GetByName(ctx context.Context, name string) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE name = ?`
	service, err := scanService(r.executeQueryRow(ctx, "get_by_name", query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("service", name)
		}
		return nil, repositories.NewRepositoryError("get_by_name", "service", name, err)
	}

	return service, nil
}

// Update updates an existing service
func (r *ServiceRepository) Update(ctx context.Context, service *models.Service) error {
	if err := service.Validate(); err != nil {
		return repositories.ValidationError("service", service.ID, err)
	}

	service.UpdateTimestamp()

	query := `
		UPDATE services
		SET name = ?, description = ?, duration_minutes = ?, price = ?, active = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		service.Name,
		service.Description,
		service.DurationMinutes,
		service.Price,
		service.Active,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return r.translateError("update", service.Name, err)
	}

	return r.checkRowsAffected(result, "update", service.ID)
}

// List retrieves services ordered by name
func (r *ServiceRepository) List(ctx context.Context, filters repositories.ServiceFilters) ([]*models.Service, error) {
	where, args := r.buildWhereClause(serviceConditions(filters))
	query, args := paginate(`SELECT `+serviceColumns+` FROM services `+where+` ORDER BY name`, args, filters.ListFilters)

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}

	services, err := collect(rows, scanService)
	if err != nil {
		return nil, repositories.NewRepositoryError("list", "service", "", err)
	}
	return services, nil
}

// Count returns the number of services matching the filters
func (r *ServiceRepository) Count(ctx context.Context, filters repositories.ServiceFilters) (int64, error) {
	where, args := r.buildWhereClause(serviceConditions(filters))
	return r.count(ctx, where, args)
}

func serviceConditions(filters repositories.ServiceFilters) map[string]interface{} {
	conditions := map[string]interface{}{}
	if filters.ActiveOnly {
		conditions["active"] = true
	}
	return conditions
}

func scanService(row rowScanner) (*models.Service, error) {
	service := &models.Service{}
	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.DurationMinutes,
		&service.Price,
		&service.Active,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return service, nil
}
