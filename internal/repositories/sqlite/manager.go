package sqlite

import (
	"context"
	"database/sql"

	"queue-manager-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// RepositoryManager implements repositories.RepositoryManager for SQLite
type RepositoryManager struct {
	db                 *sql.DB
	logger             *logrus.Logger
	serviceRepo        repositories.ServiceRepository
	staffRepo          repositories.StaffRepository
	appointmentRepo    repositories.AppointmentRepository
	queueRepo          repositories.QueueRepository
	transactionManager *TransactionManager
}

var _ repositories.RepositoryManager = (*RepositoryManager)(nil)

// NewRepositoryManager creates a repository manager over an open, migrated database
func NewRepositoryManager(db *sql.DB, logger *logrus.Logger) *RepositoryManager {
	if logger == nil {
		logger = logrus.New()
	}

	return &RepositoryManager{
		db:                 db,
		logger:             logger,
		serviceRepo:        NewServiceRepository(db, logger),
		staffRepo:          NewStaffRepository(db, logger),
		appointmentRepo:    NewAppointmentRepository(db, logger),
		queueRepo:          NewQueueRepository(db, logger),
		transactionManager: NewTransactionManager(db, logger),
	}
}

// WithTransaction executes a function within a transaction
func (m *RepositoryManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.transactionManager.WithTransaction(ctx, fn)
}

// Services returns the service repository
func (m *RepositoryManager) Services() repositories.ServiceRepository {
	return m.serviceRepo
}

// Staff returns the staff repository
func (m *RepositoryManager) Staff() repositories.StaffRepository {
	return m.staffRepo
}

// Appointments returns the appointment repository
func (m *RepositoryManager) Appointments() repositories.AppointmentRepository {
	return m.appointmentRepo
}

// Queue returns the queue repository
func (m *RepositoryManager) Queue() repositories.QueueRepository {
	return m.queueRepo
}

// Close closes the underlying database
func (m *RepositoryManager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Health checks the health of the repository connections
func (m *RepositoryManager) Health(ctx context.Context) error {
	if m.db == nil {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	if err := m.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}

	var result int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return repositories.ConnectionError(err)
	}

	if result != 1 {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	return nil
}
