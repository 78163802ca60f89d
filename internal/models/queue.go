package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueStatus represents the state of a walk-in queue entry
type QueueStatus string

const (
	QueueWaiting QueueStatus = "waiting"
	QueueCalled  QueueStatus = "called"
	QueueLeft    QueueStatus = "left"
)

// QueueEntry represents a walk-in customer waiting to be served
type QueueEntry struct {
	ID           string      `json:"id" db:"id" validate:"required,uuid"`
	CustomerName string      `json:"customer_name" db:"customer_name" validate:"required,max=100"`
	ServiceID    *string     `json:"service_id,omitempty" db:"service_id" validate:"omitempty,uuid"`
	Position     int         `json:"position" db:"position" validate:"gte=0"`
	Status       QueueStatus `json:"status" db:"status" validate:"required,oneof=waiting called left"`
	JoinedAt     time.Time   `json:"joined_at" db:"joined_at"`
	CalledAt     *time.Time  `json:"called_at,omitempty" db:"called_at"`
}

// NewQueueEntry creates a waiting entry. The position is assigned on insert.
func NewQueueEntry(customerName string) *QueueEntry {
	return &QueueEntry{
		ID:           uuid.New().String(),
		CustomerName: SanitizeString(customerName),
		Status:       QueueWaiting,
		JoinedAt:     time.Now().UTC(),
	}
}

// Validate validates the queue entry data
func (q *QueueEntry) Validate() error {
	return validateStruct(q)
}

// IsWaiting reports whether the entry is still in line
func (q *QueueEntry) IsWaiting() bool {
	return q.Status == QueueWaiting
}

// MarkCalled records that the entry was called to be served
func (q *QueueEntry) MarkCalled(at time.Time) {
	at = at.UTC()
	q.Status = QueueCalled
	q.CalledAt = &at
}

// MarkLeft records that the customer left without being served
func (q *QueueEntry) MarkLeft() {
	q.Status = QueueLeft
	q.CalledAt = nil
}

// WaitTime returns how long the entry waited, or has been waiting so far
func (q *QueueEntry) WaitTime(now time.Time) time.Duration {
	if q.CalledAt != nil {
		return q.CalledAt.Sub(q.JoinedAt)
	}
	return now.Sub(q.JoinedAt)
}
