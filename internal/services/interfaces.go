package services

import (
	"context"
	"time"

	"queue-manager-api/internal/models"
)

// CatalogService defines the business operations on bookable services
type CatalogService interface {
	CreateService(ctx context.Context, req *CreateServiceRequest) (*models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context, filters *ServiceListFilters) (*ListResult[models.Service], error)
}

// StaffService defines the business operations on staff members
type StaffService interface {
	CreateStaff(ctx context.Context, req *CreateStaffRequest) (*models.Staff, error)
	GetStaff(ctx context.Context, id string) (*models.Staff, error)
	ListStaff(ctx context.Context, filters *StaffListFilters) (*ListResult[models.Staff], error)
}

// AppointmentService defines the business operations on appointments
type AppointmentService interface {
	BookAppointment(ctx context.Context, req *BookAppointmentRequest) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filters *AppointmentListFilters) (*ListResult[models.Appointment], error)
	UpdateStatus(ctx context.Context, id string, req *UpdateAppointmentStatusRequest) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, id string) (*models.Appointment, error)
}

// QueueService defines the business operations on the walk-in queue
type QueueService interface {
	JoinQueue(ctx context.Context, req *JoinQueueRequest) (*models.QueueEntry, error)
	GetEntry(ctx context.Context, id string) (*models.QueueEntry, error)
	CallNext(ctx context.Context) (*models.QueueEntry, error)
	LeaveQueue(ctx context.Context, id string) (*models.QueueEntry, error)
	GetSummary(ctx context.Context) (*models.QueueSummary, error)
}

// Request and response types for service operations

// ListResult is one page of a listing together with the total match count
type ListResult[T any] struct {
	Items  []*T  `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Catalog service types
type CreateServiceRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=100"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=5,max=480"`
	Price           float64 `json:"price" validate:"gte=0"`
}

type ServiceListFilters struct {
	ActiveOnly bool `json:"active_only,omitempty"`
	models.ListFilters
}

// Staff service types
type CreateStaffRequest struct {
	Name  string           `json:"name" validate:"required,min=1,max=100"`
	Email *string          `json:"email,omitempty" validate:"omitempty,email"`
	Role  models.StaffRole `json:"role" validate:"required,oneof=practitioner reception manager"`
}

type StaffListFilters struct {
	Role       models.StaffRole `json:"role,omitempty"`
	ActiveOnly bool             `json:"active_only,omitempty"`
	models.ListFilters
}

// Appointment service types
type BookAppointmentRequest struct {
	CustomerName  string    `json:"customer_name" validate:"required,min=1,max=100"`
	CustomerPhone *string   `json:"customer_phone,omitempty" validate:"omitempty,phone"`
	CustomerEmail *string   `json:"customer_email,omitempty" validate:"omitempty,email"`
	ServiceID     string    `json:"service_id" validate:"required,uuid"`
	StaffID       *string   `json:"staff_id,omitempty" validate:"omitempty,uuid"`
	ScheduledAt   time.Time `json:"scheduled_at" validate:"required"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled"`
}

type AppointmentListFilters struct {
	Status    models.AppointmentStatus `json:"status,omitempty"`
	StaffID   string                   `json:"staff_id,omitempty"`
	ServiceID string                   `json:"service_id,omitempty"`
	From      *time.Time               `json:"from,omitempty"`
	To        *time.Time               `json:"to,omitempty"`
	models.ListFilters
}

// Queue service types
type JoinQueueRequest struct {
	CustomerName string  `json:"customer_name" validate:"required,min=1,max=100"`
	ServiceID    *string `json:"service_id,omitempty" validate:"omitempty,uuid"`
}
