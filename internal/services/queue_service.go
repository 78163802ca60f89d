package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/repositories"
)

// queueService implements the QueueService interface
type queueService struct {
	repos repositories.RepositoryManager
	now   func() time.Time
}

// NewQueueService creates a new queue service instance
func NewQueueService(repos repositories.RepositoryManager) QueueService {
	return &queueService{
		repos: repos,
		now:   time.Now,
	}
}

// JoinQueue adds a walk-in customer to the back of the queue
func (s *queueService) JoinQueue(ctx context.Context, req *JoinQueueRequest) (*models.QueueEntry, error) {
	if err := validateRequest("queue_entry", req); err != nil {
		return nil, err
	}

	entry := models.NewQueueEntry(req.CustomerName)
	entry.JoinedAt = s.now().UTC()

	err := s.repos.WithTransaction(ctx, func(ctx context.Context) error {
		if req.ServiceID != nil {
			service, err := s.repos.Services().GetByID(ctx, *req.ServiceID)
			if err != nil {
				return err
			}
			if !service.Active {
				return repositories.ConflictError("service", service.ID,
					fmt.Sprintf("service %s is not available", service.Name))
			}
			entry.ServiceID = &service.ID
		}

		return s.repos.Queue().Enqueue(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join queue: %w", err)
	}

	return entry, nil
}

// GetEntry retrieves a queue entry by ID
func (s *queueService) GetEntry(ctx context.Context, id string) (*models.QueueEntry, error) {
	if err := validateID("queue_entry", id); err != nil {
		return nil, err
	}

	entry, err := s.repos.Queue().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}

	return entry, nil
}

// CallNext marks the longest-waiting customer as called
func (s *queueService) CallNext(ctx context.Context) (*models.QueueEntry, error) {
	var entry *models.QueueEntry
	err := s.repos.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.repos.Queue().NextWaiting(ctx)
		if err != nil {
			return err
		}

		entry.MarkCalled(s.now())
		return s.repos.Queue().UpdateStatus(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call next customer: %w", err)
	}

	return entry, nil
}

// LeaveQueue removes a waiting customer from the queue
func (s *queueService) LeaveQueue(ctx context.Context, id string) (*models.QueueEntry, error) {
	if err := validateID("queue_entry", id); err != nil {
		return nil, err
	}

	var entry *models.QueueEntry
	err := s.repos.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.repos.Queue().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !entry.IsWaiting() {
			return repositories.ConflictError("queue_entry", id,
				fmt.Sprintf("queue entry %s is already %s", id, entry.Status))
		}

		entry.MarkLeft()
		return s.repos.Queue().UpdateStatus(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to leave queue: %w", err)
	}

	return entry, nil
}

// GetSummary reports the waiting entries and the estimated wait for a new arrival.
// The estimate spreads the waiting entries' service time over the active practitioners.
func (s *queueService) GetSummary(ctx context.Context) (*models.QueueSummary, error) {
	waiting, err := s.repos.Queue().ListByStatus(ctx, models.QueueWaiting, models.ListFilters{Limit: models.MaxListLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting entries: %w", err)
	}

	called, err := s.repos.Queue().CountByStatus(ctx, models.QueueCalled)
	if err != nil {
		return nil, fmt.Errorf("failed to count called entries: %w", err)
	}

	practitioners, err := s.repos.Staff().Count(ctx, repositories.StaffFilters{
		Role:       models.StaffRolePractitioner,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count practitioners: %w", err)
	}

	backlog, err := s.backlog(ctx, waiting)
	if err != nil {
		return nil, err
	}

	return &models.QueueSummary{
		Waiting:          len(waiting),
		Called:           int(called),
		EstimatedWaitMin: estimateWaitMinutes(backlog, practitioners),
		Entries:          waiting,
	}, nil
}

// backlog sums the service time of the waiting entries
func (s *queueService) backlog(ctx context.Context, waiting []*models.QueueEntry) (time.Duration, error) {
	durations := make(map[string]time.Duration)

	var total time.Duration
	for _, entry := range waiting {
		if entry.ServiceID == nil {
			total += models.DefaultServiceDuration
			continue
		}

		d, ok := durations[*entry.ServiceID]
		if !ok {
			service, err := s.repos.Services().GetByID(ctx, *entry.ServiceID)
			switch {
			case repositories.IsNotFound(err):
				d = models.DefaultServiceDuration
			case err != nil:
				return 0, fmt.Errorf("failed to load service for queue entry: %w", err)
			default:
				d = service.Duration()
			}
			durations[*entry.ServiceID] = d
		}
		total += d
	}

	return total, nil
}

func estimateWaitMinutes(backlog time.Duration, practitioners int64) int {
	if practitioners < 1 {
		practitioners = 1
	}
	return int(math.Ceil(backlog.Minutes() / float64(practitioners)))
}
