package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from the lowest to the highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank orders priorities, higher is more important. Unknown values rank below low.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i
		}
	}
	return -1
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

const (
	MaxTaskTitleLength       = 255
	MaxTaskDescriptionLength = 5000
	MaxSubtasks              = 50
)

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	Status      Status    `json:"status" yaml:"status"`
	DueDate     string    `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	AssignedTo  string    `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
	CreatedBy   string    `json:"createdBy" yaml:"createdBy"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
	Subtasks    []Subtask `json:"subtasks" yaml:"subtasks"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Attachments []string  `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Progress    *int      `json:"progress,omitempty" yaml:"progress,omitempty"`
}

type Subtask struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title" validate:"min=1,max=255"`
	Completed bool      `json:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.Subtasks = cloneSlice(t.Subtasks)
	out.Tags = cloneSlice(t.Tags)
	out.Attachments = cloneSlice(t.Attachments)
	if t.Progress != nil {
		progress := *t.Progress
		out.Progress = &progress
	}
	return out
}

// cloneSlice copies s keeping the difference between a nil and an
// empty slice, which shows up as null or [] in JSON.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// HasTags reports whether the task carries every one of the given tags.
func (t Task) HasTags(tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range t.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TaskInput is the shape accepted on creation. The id and
// the timestamps are always generated by the store.
type TaskInput struct {
	Title       string    `json:"title" validate:"min=1,max=255"`
	Description string    `json:"description,omitempty" validate:"max=5000"`
	Priority    Priority  `json:"priority" validate:"oneof=low medium high urgent"`
	Status      Status    `json:"status" validate:"oneof=todo in_progress review completed archived"`
	DueDate     string    `json:"dueDate,omitempty" validate:"omitempty,isodate"`
	AssignedTo  string    `json:"assignedTo,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	Subtasks    []Subtask `json:"subtasks,omitempty" validate:"max=50,dive"`
	Tags        []string  `json:"tags,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
	Progress    *int      `json:"progress,omitempty" validate:"omitnil,min=0,max=100"`
}

// TaskPatch carries the fields to merge into an existing task, nil
// fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty" validate:"omitnil,min=1,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitnil,max=5000"`
	Priority    *Priority  `json:"priority,omitempty" validate:"omitnil,oneof=low medium high urgent"`
	Status      *Status    `json:"status,omitempty" validate:"omitnil,oneof=todo in_progress review completed archived"`
	DueDate     *string    `json:"dueDate,omitempty" validate:"omitnil,isodate_or_empty"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	Subtasks    *[]Subtask `json:"subtasks,omitempty" validate:"omitnil,max=50,dive"`
	Tags        *[]string  `json:"tags,omitempty"`
	Attachments *[]string  `json:"attachments,omitempty"`
	Progress    *int       `json:"progress,omitempty" validate:"omitnil,min=0,max=100"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Priority == nil &&
		p.Status == nil &&
		p.DueDate == nil &&
		p.AssignedTo == nil &&
		p.Subtasks == nil &&
		p.Tags == nil &&
		p.Attachments == nil &&
		p.Progress == nil
}

// TaskFilter narrows a task list. A nil field puts no constraint on it.
type TaskFilter struct {
	Status     *Status   `json:"status,omitempty" validate:"omitnil,oneof=todo in_progress review completed archived"`
	Priority   *Priority `json:"priority,omitempty" validate:"omitnil,oneof=low medium high urgent"`
	AssignedTo *string   `json:"assignedTo,omitempty"`
	DueDate    *string   `json:"dueDate,omitempty" validate:"omitnil,isodate"`
	Tags       []string  `json:"tags,omitempty"`
}

func (f TaskFilter) Clone() TaskFilter {
	out := f
	if f.Status != nil {
		status := *f.Status
		out.Status = &status
	}
	if f.Priority != nil {
		priority := *f.Priority
		out.Priority = &priority
	}
	if f.AssignedTo != nil {
		assignedTo := *f.AssignedTo
		out.AssignedTo = &assignedTo
	}
	if f.DueDate != nil {
		dueDate := *f.DueDate
		out.DueDate = &dueDate
	}
	out.Tags = cloneSlice(f.Tags)
	return out
}

type SortBy string

const (
	SortByDueDate   SortBy = "dueDate"
	SortByPriority  SortBy = "priority"
	SortByCreatedAt SortBy = "createdAt"
)

func (b SortBy) Valid() bool {
	switch b {
	case SortByDueDate, SortByPriority, SortByCreatedAt:
		return true
	}
	return false
}
