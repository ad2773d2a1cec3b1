// Package filter holds the one implementation of task filtering shared by
// the task store, the HTTP API and the CLI.
package filter

import (
	"sort"
	"time"

	"github.com/adanyl0v/taskrabbit/internal/models"
)

// Apply returns the tasks matching every field set in f, in their
// original order. Tags match when the task carries all of them.
// The input slice is not modified.
func Apply(tasks []models.Task, f models.TaskFilter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if Matches(task, f) {
			out = append(out, task)
		}
	}
	return out
}

func Matches(task models.Task, f models.TaskFilter) bool {
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.Priority != nil && task.Priority != *f.Priority {
		return false
	}
	if f.AssignedTo != nil && task.AssignedTo != *f.AssignedTo {
		return false
	}
	if f.DueDate != nil && task.DueDate != *f.DueDate {
		return false
	}
	return task.HasTags(f.Tags)
}

// DueOn returns the tasks due on the calendar day of day, in day's location.
func DueOn(tasks []models.Task, day time.Time) []models.Task {
	y, m, d := day.Date()

	out := make([]models.Task, 0)
	for _, task := range tasks {
		if task.DueDate == "" {
			continue
		}
		due, err := models.ParseDueDate(task.DueDate, day.Location())
		if err != nil {
			continue
		}
		dy, dm, dd := due.Date()
		if dy == y && dm == m && dd == d {
			out = append(out, task)
		}
	}
	return out
}

// Overdue reports whether a not yet completed task is past its due date.
func Overdue(task models.Task, now time.Time) bool {
	if task.DueDate == "" || task.Status == models.StatusCompleted {
		return false
	}
	due, err := models.ParseDueDate(task.DueDate, now.Location())
	if err != nil {
		return false
	}
	return due.Before(now)
}

// Sort returns a stably sorted copy of tasks. Due dates come soonest
// first with undated tasks last, priorities come most urgent first and
// creation times come newest first.
func Sort(tasks []models.Task, by models.SortBy) []models.Task {
	out := append([]models.Task(nil), tasks...)

	switch by {
	case models.SortByDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, aErr := models.ParseDueDate(out[i].DueDate, time.UTC)
			b, bErr := models.ParseDueDate(out[j].DueDate, time.UTC)
			if aErr != nil || bErr != nil {
				return aErr == nil && bErr != nil
			}
			return a.Before(b)
		})
	case models.SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		})
	case models.SortByCreatedAt:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}
