package services

import (
	"fmt"

	"github.com/google/uuid"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"
)

// validateRequest checks the validate tags of a request against the shared model validator
func validateRequest(entity string, req interface{}) error {
	if req == nil {
		return repositories.ValidationError(entity, "", fmt.Errorf("request cannot be nil"))
	}
	if err := models.Validator().Struct(req); err != nil {
		return repositories.ValidationError(entity, "", err)
	}
	return nil
}

// validateID rejects ids that are not UUIDs
func validateID(entity, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repositories.NewRepositoryErrorWithMessage("validate", entity, id,
			fmt.Sprintf("invalid %s ID format: %q", entity, id), repositories.ErrInvalidID)
	}
	return nil
}
