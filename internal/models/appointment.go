package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// appointmentTransitions lists the statuses reachable from each status
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCancelled},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled},
}

// Appointment represents a booked service slot
type Appointment struct {
	ID            string            `json:"id" db:"id" validate:"required,uuid"`
	CustomerName  string            `json:"customer_name" db:"customer_name" validate:"required,max=100"`
	CustomerPhone *string           `json:"customer_phone,omitempty" db:"customer_phone" validate:"omitempty,phone"`
	CustomerEmail *string           `json:"customer_email,omitempty" db:"customer_email" validate:"omitempty,email"`
	ServiceID     string            `json:"service_id" db:"service_id" validate:"required,uuid"`
	StaffID       *string           `json:"staff_id,omitempty" db:"staff_id" validate:"omitempty,uuid"`
	ScheduledAt   time.Time         `json:"scheduled_at" db:"scheduled_at" validate:"required"`
	EndsAt        time.Time         `json:"ends_at" db:"ends_at" validate:"required,gtfield=ScheduledAt"`
	Status        AppointmentStatus `json:"status" db:"status" validate:"required,oneof=scheduled confirmed completed cancelled"`
	Notes         *string           `json:"notes,omitempty" db:"notes" validate:"omitempty,max=1000"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// NewAppointment creates a scheduled appointment occupying duration from scheduledAt.
// Times are kept at second precision.
func NewAppointment(customerName, serviceID string, scheduledAt time.Time, duration time.Duration) *Appointment {
	now := time.Now().UTC()
	start := scheduledAt.UTC().Truncate(time.Second)
	return &Appointment{
		ID:           uuid.New().String(),
		CustomerName: SanitizeString(customerName),
		ServiceID:    serviceID,
		ScheduledAt:  start,
		EndsAt:       start.Add(duration),
		Status:       AppointmentScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the appointment data
func (a *Appointment) Validate() error {
	return validateStruct(a)
}

// CanTransitionTo reports whether the appointment may move to next
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[a.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the appointment to next or returns an error naming both states
func (a *Appointment) TransitionTo(next AppointmentStatus) error {
	if !a.CanTransitionTo(next) {
		return fmt.Errorf("invalid status transition from %s to %s", a.Status, next)
	}
	a.Status = next
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// IsActive reports whether the appointment still occupies its slot
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentScheduled || a.Status == AppointmentConfirmed
}

// Overlaps reports whether the appointment's slot intersects [start, end)
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.ScheduledAt.Before(end) && start.Before(a.EndsAt)
}
