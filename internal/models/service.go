package models

import (
	"time"

	"github.com/google/uuid"
)

// Service represents a bookable service offered by the business
type Service struct {
	ID              string    `json:"id" db:"id" validate:"required,uuid"`
	Name            string    `json:"name" db:"name" validate:"required,max=100"`
	Description     *string   `json:"description,omitempty" db:"description" validate:"omitempty,max=500"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes" validate:"required,min=5,max=480"`
	Price           float64   `json:"price" db:"price" validate:"gte=0"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// NewService creates a new active service with generated ID and timestamps
func NewService(name string, durationMinutes int, price float64) *Service {
	now := time.Now().UTC()
	return &Service{
		ID:              uuid.New().String(),
		Name:            SanitizeString(name),
		DurationMinutes: durationMinutes,
		Price:           price,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate validates the service data
func (s *Service) Validate() error {
	return validateStruct(s)
}

// Duration returns the service length
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (s *Service) UpdateTimestamp() {
	s.UpdatedAt = time.Now().UTC()
}
