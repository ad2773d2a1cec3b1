package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/filter"
	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/storage"
	"github.com/adanyl0v/taskrabbit/internal/validation"
)

// taskServiceImpl keeps the task list in memory and writes the whole
// list to storage after every mutation. A failed write is logged and
// the in-memory state stays authoritative.
type taskServiceImpl struct {
	logger  zerolog.Logger
	storage *storage.LocalStorage
	now     func() time.Time

	mu     sync.RWMutex
	tasks  []models.Task
	filter models.TaskFilter
}

func NewTaskService(
	ctx context.Context,
	logger zerolog.Logger,
	localStorage *storage.LocalStorage,
) TaskService {
	s := &taskServiceImpl{
		logger:  logger,
		storage: localStorage,
		now:     time.Now,
	}
	s.load(ctx)
	return s
}

func (s *taskServiceImpl) load(ctx context.Context) {
	var tasks []models.Task
	found, err := s.storage.Get(ctx, storage.TasksKey, &tasks)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to load tasks, starting with an empty list")
		tasks = nil
	} else if !found {
		s.logger.Debug().Msg("no stored tasks")
	}

	if tasks == nil {
		tasks = make([]models.Task, 0)
	}
	for i := range tasks {
		if tasks[i].Subtasks == nil {
			tasks[i].Subtasks = make([]models.Subtask, 0)
		}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	s.logger.Info().
		Int("count", len(tasks)).
		Msg("loaded tasks")
}

func (s *taskServiceImpl) AddTask(ctx context.Context, input models.TaskInput) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := validation.CreateTask(input)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid task input")
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := s.now()
	subtasks, err := prepareSubtasks(input.Subtasks, nil, now)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to prepare subtasks")
		return nil, err
	}

	task := models.Task{
		ID:          taskUUID.String(),
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Subtasks:    subtasks,
		Tags:        input.Tags,
		Attachments: input.Attachments,
		Progress:    input.Progress,
	}.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)
	s.persistLocked(ctx)

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	out := task.Clone()
	return &out, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := validation.PatchTask(patch)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("invalid task patch")
		return nil, err
	}

	return s.update(ctx, id, func(task *models.Task, now time.Time) error {
		return applyPatch(task, patch, now)
	})
}

func (s *taskServiceImpl) ToggleComplete(ctx context.Context, id string) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(task *models.Task, _ time.Time) error {
		if task.Status == models.StatusCompleted {
			task.Status = models.StatusTodo
		} else {
			task.Status = models.StatusCompleted
		}
		return nil
	})
}

func (s *taskServiceImpl) update(
	ctx context.Context,
	id string,
	mutate func(task *models.Task, now time.Time) error,
) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		s.logger.Warn().
			Str("task_id", id).
			Msg("task not found, nothing to update")
		return nil, nil
	}

	task := s.tasks[i].Clone()
	now := s.now()
	err := mutate(&task, now)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}
	// updatedAt never moves backwards, even if the clock does
	if now.Before(task.UpdatedAt) {
		now = task.UpdatedAt
	}
	task.UpdatedAt = now

	s.tasks[i] = task
	s.persistLocked(ctx)

	s.logger.Info().
		Str("task_id", id).
		Str("status", string(task.Status)).
		Msg("updated task")
	out := task.Clone()
	return &out, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		s.logger.Warn().
			Str("task_id", id).
			Msg("task not found, nothing to delete")
	} else {
		tasks := make([]models.Task, 0, len(s.tasks)-1)
		tasks = append(tasks, s.tasks[:i]...)
		tasks = append(tasks, s.tasks[i+1:]...)
		s.tasks = tasks
	}
	s.persistLocked(ctx)

	if i >= 0 {
		s.logger.Info().
			Str("task_id", id).
			Msg("deleted task")
	}
	return nil
}

func (s *taskServiceImpl) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		s.logger.Debug().
			Str("task_id", id).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}
	task := s.tasks[i].Clone()
	return &task, nil
}

func (s *taskServiceImpl) Tasks(_ context.Context) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTasks(s.tasks)
}

func (s *taskServiceImpl) SortedTasks(ctx context.Context, by models.SortBy) []models.Task {
	return filter.Sort(s.Tasks(ctx), by)
}

func (s *taskServiceImpl) TasksDueOn(ctx context.Context, day time.Time) []models.Task {
	return filter.DueOn(s.Tasks(ctx), day)
}

func (s *taskServiceImpl) SetFilter(_ context.Context, f models.TaskFilter) error {
	err := validation.Filter(f)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid task filter")
		return err
	}

	s.mu.Lock()
	s.filter = f.Clone()
	s.mu.Unlock()

	s.logger.Debug().Msg("set task filter")
	return nil
}

func (s *taskServiceImpl) Filter() models.TaskFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filter.Clone()
}

func (s *taskServiceImpl) GetFilteredTasks(_ context.Context) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTasks(filter.Apply(s.tasks, s.filter))
}

func (s *taskServiceImpl) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full list. The write is not cancelled with
// the caller's context so that it always completes together with the
// in-memory change.
func (s *taskServiceImpl) persistLocked(ctx context.Context) {
	err := s.storage.Set(context.WithoutCancel(ctx), storage.TasksKey, s.tasks)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("count", len(s.tasks)).
			Msg("failed to persist tasks")
		return
	}
	s.logger.Debug().
		Int("count", len(s.tasks)).
		Msg("persisted tasks")
}

func applyPatch(task *models.Task, patch models.TaskPatch, now time.Time) error {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.AssignedTo != nil {
		task.AssignedTo = *patch.AssignedTo
	}
	if patch.Subtasks != nil {
		subtasks, err := prepareSubtasks(*patch.Subtasks, task.Subtasks, now)
		if err != nil {
			return err
		}
		task.Subtasks = subtasks
	}
	if patch.Tags != nil {
		task.Tags = append(make([]string, 0, len(*patch.Tags)), *patch.Tags...)
	}
	if patch.Attachments != nil {
		task.Attachments = append(make([]string, 0, len(*patch.Attachments)), *patch.Attachments...)
	}
	if patch.Progress != nil {
		progress := *patch.Progress
		task.Progress = &progress
	}
	return nil
}

// prepareSubtasks assigns ids and timestamps to new subtasks. A subtask
// that already exists keeps its createdAt and gets a fresh updatedAt
// when its content changed.
func prepareSubtasks(in, existing []models.Subtask, now time.Time) ([]models.Subtask, error) {
	known := make(map[string]models.Subtask, len(existing))
	for _, subtask := range existing {
		known[subtask.ID] = subtask
	}

	out := make([]models.Subtask, 0, len(in))
	for _, subtask := range in {
		prev, ok := known[subtask.ID]
		switch {
		case subtask.ID == "":
			subtaskUUID, err := uuid.NewV7()
			if err != nil {
				return nil, fmt.Errorf("failed to generate subtask uuid: %w", err)
			}
			subtask.ID = subtaskUUID.String()
			subtask.CreatedAt = now
			subtask.UpdatedAt = now
		case ok:
			subtask.CreatedAt = prev.CreatedAt
			subtask.UpdatedAt = prev.UpdatedAt
			if subtask.Title != prev.Title || subtask.Completed != prev.Completed {
				subtask.UpdatedAt = now
			}
		default:
			if subtask.CreatedAt.IsZero() {
				subtask.CreatedAt = now
			}
			if subtask.UpdatedAt.IsZero() {
				subtask.UpdatedAt = now
			}
		}
		out = append(out, subtask)
	}
	return out, nil
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, task := range tasks {
		out[i] = task.Clone()
	}
	return out
}
