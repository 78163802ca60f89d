package services

import (
	"fmt"

	"queue-manager-api/internal/repositories"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	CatalogService     CatalogService
	StaffService       StaffService
	AppointmentService AppointmentService
	QueueService       QueueService
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(repos repositories.RepositoryManager) (*ServiceContainer, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository manager cannot be nil")
	}

	return &ServiceContainer{
		CatalogService:     NewCatalogService(repos.Services()),
		StaffService:       NewStaffService(repos.Staff()),
		AppointmentService: NewAppointmentService(repos),
		QueueService:       NewQueueService(repos),
	}, nil
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.CatalogService == nil {
		return fmt.Errorf("catalog service is nil")
	}
	if sc.StaffService == nil {
		return fmt.Errorf("staff service is nil")
	}
	if sc.AppointmentService == nil {
		return fmt.Errorf("appointment service is nil")
	}
	if sc.QueueService == nil {
		return fmt.Errorf("queue service is nil")
	}

	return nil
}
