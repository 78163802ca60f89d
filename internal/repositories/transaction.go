package repositories

import (
	"context"
)

// TransactionManager manages database transactions.
// Repositories called with the context handed to fn take part in the transaction.
type TransactionManager interface {
	// WithTransaction executes a function within a transaction
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories provides access to all repositories
type Repositories interface {
	// Services returns the service repository
	Services() ServiceRepository

	// Staff returns the staff repository
	Staff() StaffRepository

	// Appointments returns the appointment repository
	Appointments() AppointmentRepository

	// Queue returns the queue repository
	Queue() QueueRepository
}

// RepositoryManager provides access to all repositories and transaction management
type RepositoryManager interface {
	TransactionManager
	Repositories

	// Close closes all repository connections
	Close() error

	// Health checks the health of the repository connections
	Health(ctx context.Context) error
}
