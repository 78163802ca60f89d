package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole represents what a staff member does
type StaffRole string

const (
	StaffRolePractitioner StaffRole = "practitioner"
	StaffRoleReception    StaffRole = "reception"
	StaffRoleManager      StaffRole = "manager"
)

// Staff represents a staff member who can be assigned appointments
type Staff struct {
	ID        string    `json:"id" db:"id" validate:"required,uuid"`
	Name      string    `json:"name" db:"name" validate:"required,max=100"`
	Email     *string   `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Role      StaffRole `json:"role" db:"role" validate:"required,oneof=practitioner reception manager"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewStaff creates a new active staff member
func NewStaff(name string, role StaffRole) *Staff {
	now := time.Now().UTC()
	return &Staff{
		ID:        uuid.New().String(),
		Name:      SanitizeString(name),
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the staff data
func (s *Staff) Validate() error {
	return validateStruct(s)
}

// CanTakeAppointments reports whether appointments may be assigned to the staff member
func (s *Staff) CanTakeAppointments() bool {
	return s.Active && s.Role == StaffRolePractitioner
}
