package models

// TaskStats summarises the task list for the analytics view.
type TaskStats struct {
	Total             int              `json:"total" yaml:"total"`
	Todo              int              `json:"todo" yaml:"todo"`
	InProgress        int              `json:"inProgress" yaml:"inProgress"`
	Review            int              `json:"review" yaml:"review"`
	Completed         int              `json:"completed" yaml:"completed"`
	Archived          int              `json:"archived" yaml:"archived"`
	Overdue           int              `json:"overdue" yaml:"overdue"`
	CompletionRate    int              `json:"completionRate" yaml:"completionRate"`
	PriorityBreakdown map[Priority]int `json:"priorityBreakdown" yaml:"priorityBreakdown"`
}
