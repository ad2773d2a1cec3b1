package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_CloneKeepsEmptySlices(t *testing.T) {
	task := Task{
		ID:          "t1",
		Subtasks:    []Subtask{},
		Tags:        []string{},
		Attachments: nil,
	}

	clone := task.Clone()
	assert.NotNil(t, clone.Subtasks)
	assert.NotNil(t, clone.Tags)
	assert.Nil(t, clone.Attachments)

	data, err := json.Marshal(clone)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subtasks":[]`)
}

func TestTask_CloneIsDeep(t *testing.T) {
	progress := 10
	task := Task{
		Subtasks: []Subtask{{ID: "s1", Title: "a"}},
		Tags:     []string{"work"},
		Progress: &progress,
	}

	clone := task.Clone()
	clone.Subtasks[0].Title = "b"
	clone.Tags[0] = "home"
	*clone.Progress = 90

	assert.Equal(t, "a", task.Subtasks[0].Title)
	assert.Equal(t, "work", task.Tags[0])
	assert.Equal(t, 10, *task.Progress)
}

func TestSortBy_Valid(t *testing.T) {
	for _, by := range []SortBy{SortByDueDate, SortByPriority, SortByCreatedAt} {
		assert.True(t, by.Valid(), by)
	}
	assert.False(t, SortBy("title").Valid())
	assert.False(t, SortBy("").Valid())
}
