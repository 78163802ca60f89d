package repositories

import (
	"context"
	"time"

	"queue-manager-api/internal/models"
)

// BaseRepository defines common CRUD operations for all repositories
type BaseRepository[T any] interface {
	// Create creates a new entity
	Create(ctx context.Context, entity *T) error

	// GetByID retrieves an entity by its ID
	GetByID(ctx context.Context, id string) (*T, error)

	// Update updates an existing entity
	Update(ctx context.Context, entity *T) error

	// Delete deletes an entity by its ID
	Delete(ctx context.Context, id string) error

	// Exists checks if an entity with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}

// ServiceFilters narrows a service listing
type ServiceFilters struct {
	ActiveOnly bool
	models.ListFilters
}

// ServiceRepository defines operations specific to bookable services
type ServiceRepository interface {
	BaseRepository[models.Service]

	// GetByName retrieves a service by its unique name
	GetByName(ctx context.Context, name string) (*models.Service, error)

	// List retrieves services ordered by name
	List(ctx context.Context, filters ServiceFilters) ([]*models.Service, error)

	// Count returns the number of services matching the filters
	Count(ctx context.Context, filters ServiceFilters) (int64, error)
}

// StaffFilters narrows a staff listing
type StaffFilters struct {
	Role       models.StaffRole
	ActiveOnly bool
	models.ListFilters
}

// StaffRepository defines operations specific to staff members
type StaffRepository interface {
	BaseRepository[models.Staff]

	// List retrieves staff members ordered by name
	List(ctx context.Context, filters StaffFilters) ([]*models.Staff, error)

	// Count returns the number of staff members matching the filters
	Count(ctx context.Context, filters StaffFilters) (int64, error)
}

// AppointmentFilters narrows an appointment listing
type AppointmentFilters struct {
	Status    models.AppointmentStatus
	StaffID   string
	ServiceID string
	From      *time.Time
	To        *time.Time
	models.ListFilters
}

// AppointmentRepository defines operations specific to appointments
type AppointmentRepository interface {
	BaseRepository[models.Appointment]

	// List retrieves appointments ordered by start time
	List(ctx context.Context, filters AppointmentFilters) ([]*models.Appointment, error)

	// Count returns the number of appointments matching the filters
	Count(ctx context.Context, filters AppointmentFilters) (int64, error)

	// FindOverlapping returns active appointments of a staff member intersecting [start, end),
	// ignoring excludeID
	FindOverlapping(ctx context.Context, staffID string, start, end time.Time, excludeID string) ([]*models.Appointment, error)
}

// QueueRepository defines operations on the walk-in queue
type QueueRepository interface {
	// Enqueue inserts a waiting entry and assigns it the next position
	Enqueue(ctx context.Context, entry *models.QueueEntry) error

	// GetByID retrieves a queue entry by its ID
	GetByID(ctx context.Context, id string) (*models.QueueEntry, error)

	// NextWaiting returns the waiting entry with the lowest position
	NextWaiting(ctx context.Context) (*models.QueueEntry, error)

	// ListByStatus returns entries with the given status ordered by position
	ListByStatus(ctx context.Context, status models.QueueStatus, filters models.ListFilters) ([]*models.QueueEntry, error)

	// CountByStatus returns the number of entries with the given status
	CountByStatus(ctx context.Context, status models.QueueStatus) (int64, error)

	// UpdateStatus moves an entry out of the waiting state. It fails with a conflict
	// when the entry is no longer waiting.
	UpdateStatus(ctx context.Context, entry *models.QueueEntry) error
}
