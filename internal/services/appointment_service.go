package services

import (
	"context"
	"fmt"
	"time"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"
)

// appointmentService implements the AppointmentService interface
type appointmentService struct {
	repos repositories.RepositoryManager
	now   func() time.Time
}

// NewAppointmentService creates a new appointment service instance
func NewAppointmentService(repos repositories.RepositoryManager) AppointmentService {
	return &appointmentService{
		repos: repos,
		now:   time.Now,
	}
}

// BookAppointment books a service slot. The service must be active; an assigned staff
// member must be an active practitioner with no overlapping active appointment.
func (s *appointmentService) BookAppointment(ctx context.Context, req *BookAppointmentRequest) (*models.Appointment, error) {
	if err := validateRequest("appointment", req); err != nil {
		return nil, err
	}

	if !req.ScheduledAt.After(s.now()) {
		return nil, repositories.ValidationError("appointment", "",
			&models.ValidationError{Field: "scheduled_at", Message: "scheduled_at must be in the future", Value: req.ScheduledAt})
	}

	var appointment *models.Appointment
	err := s.repos.WithTransaction(ctx, func(ctx context.Context) error {
		service, err := s.repos.Services().GetByID(ctx, req.ServiceID)
		if err != nil {
			return err
		}
		if !service.Active {
			return repositories.ConflictError("service", service.ID,
				fmt.Sprintf("service %s is not available for booking", service.Name))
		}

		appointment = models.NewAppointment(req.CustomerName, service.ID, req.ScheduledAt, service.Duration())
		appointment.CustomerPhone = models.SanitizeOptional(req.CustomerPhone)
		appointment.CustomerEmail = models.SanitizeOptional(req.CustomerEmail)
		appointment.Notes = models.SanitizeOptional(req.Notes)

		if req.StaffID != nil {
			if err := s.assignStaff(ctx, appointment, *req.StaffID); err != nil {
				return err
			}
		}

		return s.repos.Appointments().Create(ctx, appointment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	return appointment, nil
}

// assignStaff checks availability of staffID for the appointment's slot
func (s *appointmentService) assignStaff(ctx context.Context, appointment *models.Appointment, staffID string) error {
	staff, err := s.repos.Staff().GetByID(ctx, staffID)
	if err != nil {
		return err
	}
	if !staff.CanTakeAppointments() {
		return repositories.ConflictError("staff", staff.ID,
			fmt.Sprintf("staff member %s cannot take appointments", staff.Name))
	}

	overlapping, err := s.repos.Appointments().FindOverlapping(ctx, staff.ID, appointment.ScheduledAt, appointment.EndsAt, appointment.ID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return repositories.ConflictError("appointment", overlapping[0].ID,
			fmt.Sprintf("staff member %s is already booked at %s", staff.Name, overlapping[0].ScheduledAt.Format(time.RFC3339)))
	}

	appointment.StaffID = &staff.ID
	return nil
}

// GetAppointment retrieves an appointment by ID
func (s *appointmentService) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	if err := validateID("appointment", id); err != nil {
		return nil, err
	}

	appointment, err := s.repos.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return appointment, nil
}

// ListAppointments lists appointments ordered by start time
func (s *appointmentService) ListAppointments(ctx context.Context, filters *AppointmentListFilters) (*ListResult[models.Appointment], error) {
	if filters == nil {
		filters = &AppointmentListFilters{}
	}

	if filters.From != nil && filters.To != nil && !filters.From.Before(*filters.To) {
		return nil, repositories.ValidationError("appointment", "",
			&models.ValidationError{Field: "to", Message: "to must be after from"})
	}

	repoFilters := repositories.AppointmentFilters{
		Status:      filters.Status,
		StaffID:     filters.StaffID,
		ServiceID:   filters.ServiceID,
		From:        filters.From,
		To:          filters.To,
		ListFilters: filters.ListFilters.Normalize(),
	}

	items, err := s.repos.Appointments().List(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	total, err := s.repos.Appointments().Count(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	return &ListResult[models.Appointment]{
		Items:  items,
		Total:  total,
		Limit:  repoFilters.Limit,
		Offset: repoFilters.Offset,
	}, nil
}

// UpdateStatus moves an appointment along its lifecycle
func (s *appointmentService) UpdateStatus(ctx context.Context, id string, req *UpdateAppointmentStatusRequest) (*models.Appointment, error) {
	if err := validateID("appointment", id); err != nil {
		return nil, err
	}
	if err := validateRequest("appointment", req); err != nil {
		return nil, err
	}

	var appointment *models.Appointment
	err := s.repos.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		appointment, err = s.repos.Appointments().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := appointment.TransitionTo(req.Status); err != nil {
			return repositories.ConflictError("appointment", id, err.Error())
		}

		return s.repos.Appointments().Update(ctx, appointment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}

	return appointment, nil
}

// CancelAppointment cancels a scheduled or confirmed appointment
func (s *appointmentService) CancelAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	return s.UpdateStatus(ctx, id, &UpdateAppointmentStatusRequest{Status: models.AppointmentCancelled})
}
