package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/constants"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
)

const kpiDateLayout = "2006-01-02"

var ErrInvalidKPIDays = apierrors.Validationf("days must be between 1 and %d", constants.MaxKPIDays)

// KPIService aggregates task counts for reporting
type KPIService struct {
	store repository.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewKPIService creates a new KPIService
func NewKPIService(store repository.Store, log *slog.Logger) *KPIService {
	return &KPIService{store: store, log: log, now: time.Now}
}

// KPIPeriod is the reporting window of a per-day aggregation
type KPIPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
}

// TaskCountPerDay is the result of CountTasksByStatusPerDay
type TaskCountPerDay struct {
	Total  int64                 `json:"total"`
	Period KPIPeriod             `json:"period"`
	PerDay []repository.DayCount `json:"perDay"`
}

// CountTasksByStatus counts all tasks, or only those with the given status
func (s *KPIService) CountTasksByStatus(ctx context.Context, status *models.TaskStatus) (int64, error) {
	count, err := s.store.Tasks().Count(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// CountTasksByStatusPerDay counts tasks created during the last days, bucketed
// by calendar day. Days without tasks are omitted. When the grouped query
// fails the result degrades to a single bucket dated today.
func (s *KPIService) CountTasksByStatusPerDay(ctx context.Context, status *models.TaskStatus, days int) (*TaskCountPerDay, error) {
	if days < 1 || days > constants.MaxKPIDays {
		return nil, ErrInvalidKPIDays
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)

	result := &TaskCountPerDay{
		Period: KPIPeriod{
			StartDate: start.Format(kpiDateLayout),
			EndDate:   end.Format(kpiDateLayout),
			Days:      days,
		},
	}

	perDay, err := s.store.Tasks().CountPerDay(ctx, status, start)
	if err != nil {
		s.log.WarnContext(ctx, "per-day task count failed, falling back to total", "error", err, "days", days)

		total, countErr := s.store.Tasks().Count(ctx, status)
		if countErr != nil {
			return nil, fmt.Errorf("failed to count tasks: %w", countErr)
		}

		result.Total = total
		result.PerDay = []repository.DayCount{{Date: end.Format(kpiDateLayout), Total: total}}
		return result, nil
	}

	result.PerDay = perDay
	for _, day := range perDay {
		result.Total += day.Total
	}
	return result, nil
}
