package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const staffColumns = `id, name, email, role, active, created_at, updated_at`

// StaffRepository implements repositories.StaffRepository for SQLite
type StaffRepository struct {
	*BaseRepository[models.Staff]
}

// NewStaffRepository creates a new SQLite staff repository
func NewStaffRepository(db *sql.DB, logger *logrus.Logger) repositories.StaffRepository {
	return &StaffRepository{
		BaseRepository: NewBaseRepository[models.Staff](db, "staff", "staff", logger),
	}
}

// Create creates a new staff member
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if err := staff.Validate(); err != nil {
		return repositories.ValidationError("staff", staff.ID, err)
	}

	query := `
		INSERT INTO staff (` + staffColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.Role,
		staff.Active,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		value := staff.ID
		if staff.Email != nil {
			value = *staff.Email
		}
		return r.translateError("create", value, err)
	}

	return nil
}

// GetByID retrieves a staff member by ID
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*models.Staff, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = ?`
	staff, err := scanStaff(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("staff", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "staff", id, err)
	}

	return staff, nil
}

// Update updates an existing staff member
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	if err := staff.Validate(); err != nil {
		return repositories.ValidationError("staff", staff.ID, err)
	}

	staff.UpdatedAt = nowUTC()

	query := `
		UPDATE staff
		SET name = ?, email = ?, role = ?, active = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		staff.Name,
		staff.Email,
		staff.Role,
		staff.Active,
		staff.UpdatedAt,
		staff.ID,
	)
	if err != nil {
		return r.translateError("update", staff.ID, err)
	}

	return r.checkRowsAffected(result, "update", staff.ID)
}

// List retrieves staff members ordered by name
func (r *StaffRepository) List(ctx context.Context, filters repositories.StaffFilters) ([]*models.Staff, error) {
	where, args := r.buildWhereClause(staffConditions(filters))
	query, args := paginate(`SELECT `+staffColumns+` FROM staff `+where+` ORDER BY name`, args, filters.ListFilters)

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}

	staff, err := collect(rows, scanStaff)
	if err != nil {
		return nil, repositories.NewRepositoryError("list", "staff", "", err)
	}
	return staff, nil
}

// Count returns the number of staff members matching the filters
func (r *StaffRepository) Count(ctx context.Context, filters repositories.StaffFilters) (int64, error) {
	where, args := r.buildWhereClause(staffConditions(filters))
	return r.count(ctx, where, args)
}

func staffConditions(filters repositories.StaffFilters) map[string]interface{} {
	conditions := map[string]interface{}{}
	if filters.Role != "" {
		conditions["role"] = filters.Role
	}
	if filters.ActiveOnly {
		conditions["active"] = true
	}
	return conditions
}

func scanStaff(row rowScanner) (*models.Staff, error) {
	staff := &models.Staff{}
	err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.Role,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return staff, nil
}
