package models

import (
	"time"
)

// Common constants
const (
	// DefaultListLimit is applied when a list request carries no limit
	DefaultListLimit = 100

	// MaxListLimit caps any list request
	MaxListLimit = 1000

	// DefaultServiceDuration is used for walk-in wait estimates when an entry has no service
	DefaultServiceDuration = 30 * time.Minute
)

// ListFilters represents common pagination parameters
type ListFilters struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Normalize clamps the limit into [1, MaxListLimit] and the offset to >= 0
func (f ListFilters) Normalize() ListFilters {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// HealthCheck represents system health status
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Mode      string            `json:"mode"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
}

// QueueSummary describes the current state of the walk-in queue
type QueueSummary struct {
	Waiting          int           `json:"waiting"`
	Called           int           `json:"called"`
	EstimatedWaitMin int           `json:"estimated_wait_minutes"`
	Entries          []*QueueEntry `json:"entries"`
}
