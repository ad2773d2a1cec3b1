package services

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/filter"
	"github.com/adanyl0v/taskrabbit/internal/models"
)

type analyticsServiceImpl struct {
	logger zerolog.Logger
	tasks  TaskService
	now    func() time.Time
}

func NewAnalyticsService(logger zerolog.Logger, tasks TaskService) AnalyticsService {
	return &analyticsServiceImpl{
		logger: logger,
		tasks:  tasks,
		now:    time.Now,
	}
}

func (s *analyticsServiceImpl) Stats(ctx context.Context) models.TaskStats {
	tasks := s.tasks.Tasks(ctx)
	now := s.now()

	stats := models.TaskStats{
		Total:             len(tasks),
		PriorityBreakdown: make(map[models.Priority]int, len(models.Priorities)),
	}
	for _, priority := range models.Priorities {
		stats.PriorityBreakdown[priority] = 0
	}

	for _, task := range tasks {
		switch task.Status {
		case models.StatusTodo:
			stats.Todo++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusReview:
			stats.Review++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusArchived:
			stats.Archived++
		}
		if filter.Overdue(task, now) {
			stats.Overdue++
		}
		if _, ok := stats.PriorityBreakdown[task.Priority]; ok {
			stats.PriorityBreakdown[task.Priority]++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}

	s.logger.Debug().
		Int("total", stats.Total).
		Int("completed", stats.Completed).
		Int("overdue", stats.Overdue).
		Msg("computed task stats")
	return stats
}
