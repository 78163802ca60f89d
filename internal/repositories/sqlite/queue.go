package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const queueColumns = `id, customer_name, service_id, position, status, joined_at, called_at`

// QueueRepository implements repositories.QueueRepository for SQLite
type QueueRepository struct {
	*BaseRepository[models.QueueEntry]
}

// NewQueueRepository creates a new SQLite queue repository
func NewQueueRepository(db *sql.DB, logger *logrus.Logger) repositories.QueueRepository {
	return &QueueRepository{
		BaseRepository: NewBaseRepository[models.QueueEntry](db, "queue_entries", "queue_entry", logger),
	}
}

// Enqueue inserts a waiting entry. Positions increase monotonically and are never reused.
func (r *QueueRepository) Enqueue(ctx context.Context, entry *models.QueueEntry) error {
	if err := entry.Validate(); err != nil {
		return repositories.ValidationError("queue_entry", entry.ID, err)
	}
	if !entry.IsWaiting() {
		return repositories.ConflictError("queue_entry", entry.ID, "only waiting entries can be enqueued")
	}

	query := `
		INSERT INTO queue_entries (id, customer_name, service_id, position, status, joined_at)
		SELECT ?, ?, ?, COALESCE(MAX(position), 0) + 1, ?, ?
		FROM queue_entries
		RETURNING position`

	var position int
	err := r.executeQueryRow(ctx, "enqueue", query,
		entry.ID,
		entry.CustomerName,
		entry.ServiceID,
		entry.Status,
		entry.JoinedAt,
	).Scan(&position)
	if err != nil {
		if translated := r.translateError("enqueue", entry.ID, err); translated != err {
			return translated
		}
		return repositories.NewRepositoryError("enqueue", "queue_entry", entry.ID, err)
	}

	entry.Position = position
	return nil
}

// GetByID retrieves a queue entry by ID
func (r *QueueRepository) GetByID(ctx context.Context, id string) (*models.QueueEntry, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + queueColumns + ` FROM queue_entries WHERE id = ?`
	entry, err := scanQueueEntry(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("queue_entry", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "queue_entry", id, err)
	}

	return entry, nil
}

// NextWaiting returns the waiting entry with the lowest position
func (r *QueueRepository) NextWaiting(ctx context.Context) (*models.QueueEntry, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM queue_entries
		WHERE status = ?
		ORDER BY position
		LIMIT 1`

	entry, err := scanQueueEntry(r.executeQueryRow(ctx, "next_waiting", query, models.QueueWaiting))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NewRepositoryErrorWithMessage("next_waiting", "queue_entry", "",
				"no customers are waiting", repositories.ErrNotFound)
		}
		return nil, repositories.NewRepositoryError("next_waiting", "queue_entry", "", err)
	}

	return entry, nil
}

// ListByStatus returns entries with the given status ordered by position
func (r *QueueRepository) ListByStatus(ctx context.Context, status models.QueueStatus, filters models.ListFilters) ([]*models.QueueEntry, error) {
	where, args := r.buildWhereClause(map[string]interface{}{"status": status})
	query, args := paginate(`SELECT `+queueColumns+` FROM queue_entries `+where+` ORDER BY position`, args, filters)

	rows, err := r.executeQuery(ctx, "list_by_status", query, args...)
	if err != nil {
		return nil, err
	}

	entries, err := collect(rows, scanQueueEntry)
	if err != nil {
		return nil, repositories.NewRepositoryError("list_by_status", "queue_entry", "", err)
	}
	return entries, nil
}

// CountByStatus returns the number of entries with the given status
func (r *QueueRepository) CountByStatus(ctx context.Context, status models.QueueStatus) (int64, error) {
	where, args := r.buildWhereClause(map[string]interface{}{"status": status})
	return r.count(ctx, where, args)
}

// UpdateStatus moves a waiting entry to its new status
func (r *QueueRepository) UpdateStatus(ctx context.Context, entry *models.QueueEntry) error {
	if entry.IsWaiting() {
		return repositories.ConflictError("queue_entry", entry.ID, "entry must leave the waiting state")
	}

	query := `
		UPDATE queue_entries
		SET status = ?, called_at = ?
		WHERE id = ? AND status = ?`

	result, err := r.executeExec(ctx, "update_status", query,
		entry.Status,
		entry.CalledAt,
		entry.ID,
		models.QueueWaiting,
	)
	if err != nil {
		return r.translateError("update_status", entry.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError("update_status", "queue_entry", entry.ID, err)
	}
	if affected == 1 {
		return nil
	}

	exists, err := r.Exists(ctx, entry.ID)
	if err != nil {
		return err
	}
	if !exists {
		return repositories.NotFoundError("queue_entry", entry.ID)
	}
	return repositories.ConflictError("queue_entry", entry.ID,
		fmt.Sprintf("queue entry %s is no longer waiting", entry.ID))
}

func scanQueueEntry(row rowScanner) (*models.QueueEntry, error) {
	entry := &models.QueueEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.CustomerName,
		&entry.ServiceID,
		&entry.Position,
		&entry.Status,
		&entry.JoinedAt,
		&entry.CalledAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
