package services

import (
	"context"
	"fmt"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"
)

// catalogService implements the CatalogService interface
type catalogService struct {
	serviceRepo repositories.ServiceRepository
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(serviceRepo repositories.ServiceRepository) CatalogService {
	return &catalogService{
		serviceRepo: serviceRepo,
	}
}

// CreateService adds a bookable service to the catalog
func (s *catalogService) CreateService(ctx context.Context, req *CreateServiceRequest) (*models.Service, error) {
	if err := validateRequest("service", req); err != nil {
		return nil, err
	}

	service := models.NewService(req.Name, req.DurationMinutes, req.Price)
	service.Description = models.SanitizeOptional(req.Description)

	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	return service, nil
}

// GetService retrieves a service by ID
func (s *catalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	if err := validateID("service", id); err != nil {
		return nil, err
	}

	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	return service, nil
}

// ListServices lists services ordered by name
func (s *catalogService) ListServices(ctx context.Context, filters *ServiceListFilters) (*ListResult[models.Service], error) {
	if filters == nil {
		filters = &ServiceListFilters{}
	}

	repoFilters := repositories.ServiceFilters{
		ActiveOnly:  filters.ActiveOnly,
		ListFilters: filters.ListFilters.Normalize(),
	}

	items, err := s.serviceRepo.List(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	total, err := s.serviceRepo.Count(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to count services: %w", err)
	}

	return &ListResult[models.Service]{
		Items:  items,
		Total:  total,
		Limit:  repoFilters.Limit,
		Offset: repoFilters.Offset,
	}, nil
}
