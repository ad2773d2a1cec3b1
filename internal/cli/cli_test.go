package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/services"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "prod")
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_DIR", t.TempDir())
	t.Setenv("AUTH_PROVIDER", "mock")
	t.Setenv("AUTH_MOCK_LATENCY", "0s")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "taskrabbit %v", args)
	return out
}

func login(t *testing.T) {
	t.Helper()
	out := mustRun(t, "login", "--email", "a@b.com", "--password", "pw")
	assert.Equal(t, "Logged in as a@b.com\n", out)
}

func TestTaskCommandsRequireLogin(t *testing.T) {
	setupEnv(t)

	for _, args := range [][]string{{"list"}, {"add", "x"}, {"stats"}, {"whoami"}} {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, errNotLoggedIn, "taskrabbit %v", args)
	}
}

func TestSessionCommands(t *testing.T) {
	setupEnv(t)
	login(t)

	assert.Equal(t, "a <a@b.com> (member)\n", mustRun(t, "whoami"))

	var user models.User
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "whoami", "-o", "json")), &user))
	assert.Equal(t, "a@b.com", user.Email)

	assert.Equal(t, "Logged out\n", mustRun(t, "logout"))
	_, err := run(t, "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginValidation(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "login", "--email", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email address")
	assert.Contains(t, err.Error(), "Password is required")
}

func TestSignup(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "signup", "--email", "a@b.com", "--name", "Ann",
		"--password", "secret-pass", "--confirm-password", "other-pass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Passwords do not match")

	out := mustRun(t, "signup", "--email", "a@b.com", "--name", "Ann",
		"--password", "secret-pass", "--confirm-password", "secret-pass")
	assert.Equal(t, "Signed up as a@b.com\n", out)
	assert.Equal(t, "Ann <a@b.com> (member)\n", mustRun(t, "whoami"))
}

func TestTaskCommands(t *testing.T) {
	setupEnv(t)
	login(t)

	var task models.Task
	out := mustRun(t, "add", "Write report", "--priority", "high", "--tags", "work,docs", "-o", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, []string{"work", "docs"}, task.Tags)
	assert.NotEmpty(t, task.CreatedBy)

	assert.Equal(t, "No tasks found.\n", mustRun(t, "list", "--status", "completed"))

	out = mustRun(t, "done", task.ID)
	assert.Equal(t, "Task "+task.ID+" is now completed\n", out)

	var tasks []models.Task
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "list", "--status", "completed", "-o", "json")), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	out = mustRun(t, "list", "--tags", "work")
	assert.Contains(t, out, task.ID)
	assert.Contains(t, out, "Write report")

	var updated models.Task
	require.NoError(t, yaml.Unmarshal([]byte(mustRun(t, "update", task.ID, "--title", "Write more", "-o", "yaml")), &updated))
	assert.Equal(t, "Write more", updated.Title)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err := run(t, "update", task.ID)
	assert.Error(t, err)

	_, err = run(t, "update", "missing", "--title", "x")
	assert.ErrorIs(t, err, services.ErrTaskNotFound)

	_, err = run(t, "add", "Bad", "--priority", "critical")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid priority")

	_, err = run(t, "list", "--sort", "title")
	assert.Error(t, err)

	out = mustRun(t, "show", task.ID)
	assert.Contains(t, out, "Write more")
	assert.Contains(t, out, "work, docs")

	assert.Equal(t, "Deleted task "+task.ID+"\n", mustRun(t, "delete", task.ID))
	_, err = run(t, "show", task.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)
	_, err = run(t, "delete", task.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)
}

func TestStatsAndCalendar(t *testing.T) {
	setupEnv(t)
	login(t)

	mustRun(t, "add", "a", "--due", "2026-10-18", "--status", "completed")
	mustRun(t, "add", "b", "--due", "2026-10-19", "--priority", "urgent")

	var stats models.TaskStats
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "stats", "-o", "json")), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 50, stats.CompletionRate)
	assert.Equal(t, 1, stats.PriorityBreakdown[models.PriorityUrgent])

	out := mustRun(t, "stats")
	assert.Contains(t, out, "Completion rate:")
	assert.Contains(t, out, "50%")

	var due []models.Task
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "calendar", "2026-10-19", "-o", "json")), &due))
	require.Len(t, due, 1)
	assert.Equal(t, "b", due[0].Title)

	_, err := run(t, "calendar", "someday")
	assert.Error(t, err)
}

func TestPrefsCommand(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "prefs")
	assert.Contains(t, out, "light")

	out = mustRun(t, "prefs", "--theme", "dark", "--items-per-page", "50", "-o", "yaml")
	var prefs models.UserPreferences
	require.NoError(t, yaml.Unmarshal([]byte(out), &prefs))
	assert.Equal(t, models.ThemeDark, prefs.Theme)
	assert.Equal(t, 50, prefs.ItemsPerPage)
	assert.Equal(t, "en", prefs.Language)

	_, err := run(t, "prefs", "--items-per-page", "0")
	assert.Error(t, err)

	out = mustRun(t, "prefs", "-o", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &prefs))
	assert.Equal(t, 50, prefs.ItemsPerPage)
}

func TestUnknownOutputFormat(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "prefs", "-o", "xml")
	assert.Error(t, err)
}

func TestEnvCommand(t *testing.T) {
	out := mustRun(t, "env")
	assert.Contains(t, out, "STORAGE_DRIVER")
	assert.Contains(t, out, "JWT_SIGNING_KEY")
}
