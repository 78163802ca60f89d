package services

import (
	"context"
	"fmt"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"
)

// staffService implements the StaffService interface
type staffService struct {
	staffRepo repositories.StaffRepository
}

// NewStaffService creates a new staff service instance
func NewStaffService(staffRepo repositories.StaffRepository) StaffService {
	return &staffService{
		staffRepo: staffRepo,
	}
}

// CreateStaff registers a staff member
func (s *staffService) CreateStaff(ctx context.Context, req *CreateStaffRequest) (*models.Staff, error) {
	if err := validateRequest("staff", req); err != nil {
		return nil, err
	}

	staff := models.NewStaff(req.Name, req.Role)
	staff.Email = models.SanitizeOptional(req.Email)

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}

	return staff, nil
}

// GetStaff retrieves a staff member by ID
func (s *staffService) GetStaff(ctx context.Context, id string) (*models.Staff, error) {
	if err := validateID("staff", id); err != nil {
		return nil, err
	}

	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}

	return staff, nil
}

// ListStaff lists staff members ordered by name
func (s *staffService) ListStaff(ctx context.Context, filters *StaffListFilters) (*ListResult[models.Staff], error) {
	if filters == nil {
		filters = &StaffListFilters{}
	}

	repoFilters := repositories.StaffFilters{
		Role:        filters.Role,
		ActiveOnly:  filters.ActiveOnly,
		ListFilters: filters.ListFilters.Normalize(),
	}

	items, err := s.staffRepo.List(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	total, err := s.staffRepo.Count(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to count staff: %w", err)
	}

	return &ListResult[models.Staff]{
		Items:  items,
		Total:  total,
		Limit:  repoFilters.Limit,
		Offset: repoFilters.Offset,
	}, nil
}
