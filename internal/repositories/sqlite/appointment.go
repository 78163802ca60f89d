package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const appointmentColumns = `id, customer_name, customer_phone, customer_email, service_id, staff_id,
	scheduled_at, ends_at, status, notes, created_at, updated_at`

// AppointmentRepository implements repositories.AppointmentRepository for SQLite
type AppointmentRepository struct {
	*BaseRepository[models.Appointment]
}

// NewAppointmentRepository creates a new SQLite appointment repository
func NewAppointmentRepository(db *sql.DB, logger *logrus.Logger) repositories.AppointmentRepository {
	return &AppointmentRepository{
		BaseRepository: NewBaseRepository[models.Appointment](db, "appointments", "appointment", logger),
	}
}

// Create creates a new appointment
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if err := appointment.Validate(); err != nil {
		return repositories.ValidationError("appointment", appointment.ID, err)
	}

	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		appointment.ID,
		appointment.CustomerName,
		appointment.CustomerPhone,
		appointment.CustomerEmail,
		appointment.ServiceID,
		appointment.StaffID,
		appointment.ScheduledAt,
		appointment.EndsAt,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return r.translateError("create", appointment.ID, err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	appointment, err := scanAppointment(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("appointment", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "appointment", id, err)
	}

	return appointment, nil
}

// Update updates an existing appointment
func (r *AppointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	if err := appointment.Validate(); err != nil {
		return repositories.ValidationError("appointment", appointment.ID, err)
	}

	appointment.UpdatedAt = nowUTC()

	query := `
		UPDATE appointments
		SET customer_name = ?, customer_phone = ?, customer_email = ?, service_id = ?, staff_id = ?,
			scheduled_at = ?, ends_at = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		appointment.CustomerName,
		appointment.CustomerPhone,
		appointment.CustomerEmail,
		appointment.ServiceID,
		appointment.StaffID,
		appointment.ScheduledAt,
		appointment.EndsAt,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return r.translateError("update", appointment.ID, err)
	}

	return r.checkRowsAffected(result, "update", appointment.ID)
}

// List retrieves appointments ordered by start time
func (r *AppointmentRepository) List(ctx context.Context, filters repositories.AppointmentFilters) ([]*models.Appointment, error) {
	where, args := appointmentWhere(filters)
	query, args := paginate(`SELECT `+appointmentColumns+` FROM appointments `+where+` ORDER BY scheduled_at, id`, args, filters.ListFilters)

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}

	appointments, err := collect(rows, scanAppointment)
	if err != nil {
		return nil, repositories.NewRepositoryError("list", "appointment", "", err)
	}
	return appointments, nil
}

// Count returns the number of appointments matching the filters
func (r *AppointmentRepository) Count(ctx context.Context, filters repositories.AppointmentFilters) (int64, error) {
	where, args := appointmentWhere(filters)
	return r.count(ctx, where, args)
}

// FindOverlapping returns active appointments of a staff member intersecting [start, end)
func (r *AppointmentRepository) FindOverlapping(ctx context.Context, staffID string, start, end time.Time, excludeID string) ([]*models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE staff_id = ?
			AND status IN (?, ?)
			AND scheduled_at < ?
			AND ends_at > ?
			AND id != ?
		ORDER BY scheduled_at`

	rows, err := r.executeQuery(ctx, "find_overlapping", query,
		staffID,
		models.AppointmentScheduled,
		models.AppointmentConfirmed,
		end.UTC(),
		start.UTC(),
		excludeID,
	)
	if err != nil {
		return nil, err
	}

	appointments, err := collect(rows, scanAppointment)
	if err != nil {
		return nil, repositories.NewRepositoryError("find_overlapping", "appointment", "", err)
	}
	return appointments, nil
}

// appointmentWhere combines equality filters with the optional time range
func appointmentWhere(filters repositories.AppointmentFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filters.Status)
	}
	if filters.StaffID != "" {
		conditions = append(conditions, "staff_id = ?")
		args = append(args, filters.StaffID)
	}
	if filters.ServiceID != "" {
		conditions = append(conditions, "service_id = ?")
		args = append(args, filters.ServiceID)
	}
	if filters.From != nil {
		conditions = append(conditions, "scheduled_at >= ?")
		args = append(args, filters.From.UTC())
	}
	if filters.To != nil {
		conditions = append(conditions, "scheduled_at < ?")
		args = append(args, filters.To.UTC())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	appointment := &models.Appointment{}
	err := row.Scan(
		&appointment.ID,
		&appointment.CustomerName,
		&appointment.CustomerPhone,
		&appointment.CustomerEmail,
		&appointment.ServiceID,
		&appointment.StaffID,
		&appointment.ScheduledAt,
		&appointment.EndsAt,
		&appointment.Status,
		&appointment.Notes,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return appointment, nil
}
