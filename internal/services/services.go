package services

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/taskrabbit/internal/models"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrInvalidToken         = errors.New("invalid token")
)

type TaskService interface {
	// AddTask validates the input, assigns a new id and timestamps
	// and persists the whole task list.
	//
	// It returns a *validation.Error if the input is malformed.
	AddTask(ctx context.Context, input models.TaskInput) (*models.Task, error)

	// UpdateTask merges the set fields of the patch into the task
	// and refreshes its updatedAt.
	//
	// An unknown id is a no-op: it returns a nil task and a nil error.
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)

	// ToggleComplete flips a task between completed and todo.
	// An unknown id is a no-op, like UpdateTask.
	ToggleComplete(ctx context.Context, id string) (*models.Task, error)

	// DeleteTask removes the task if it exists.
	DeleteTask(ctx context.Context, id string) error

	// GetTaskByID returns ErrTaskNotFound for an unknown id.
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)

	Tasks(ctx context.Context) []models.Task
	SortedTasks(ctx context.Context, by models.SortBy) []models.Task
	TasksDueOn(ctx context.Context, day time.Time) []models.Task

	SetFilter(ctx context.Context, filter models.TaskFilter) error
	Filter() models.TaskFilter
	GetFilteredTasks(ctx context.Context) []models.Task
}

type AuthService interface {
	// Restore rehydrates the session from storage. The service stays in
	// the loading state until it is called.
	Restore(ctx context.Context) models.AuthState

	// Login authenticates the user through the identity provider,
	// issues a session token and persists the session.
	//
	// Any failure is recorded as the session error and also returned.
	Login(ctx context.Context, params LoginParams) (*models.Session, error)

	// Signup registers the user through the identity provider and
	// starts a session like Login.
	Signup(ctx context.Context, params SignupParams) (*models.Session, error)

	// Logout clears the session and its persisted keys.
	Logout(ctx context.Context) error

	Session() models.Session
	State() models.AuthState
	Error() string

	// ValidateToken checks that the token belongs to the current
	// session and has not expired.
	ValidateToken(token string) (*models.User, error)
}

type AnalyticsService interface {
	Stats(ctx context.Context) models.TaskStats
}

type PreferencesService interface {
	Preferences(ctx context.Context) models.UserPreferences
	UpdatePreferences(ctx context.Context, prefs models.UserPreferences) (*models.UserPreferences, error)
}

// IdentityProvider verifies credentials. The session token itself is
// issued by the AuthService.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, params SignupParams) (*models.User, error)
}

// LoginParams only requires a password to be present, the length
// policy applies when a password is chosen on signup.
type LoginParams struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=1"`
}

type SignupParams struct {
	Email           string `json:"email" validate:"email"`
	Password        string `json:"password" validate:"min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Name            string `json:"name" validate:"min=1"`
}
