// Package validation checks the shape of user input before a store
// accepts it. Failures are reported per field, keyed by the JSON name
// of the field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/taskrabbit/internal/models"
)

const MinPasswordLength = 8

// Error lists the failed fields with a human readable message each.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the per-field messages of err, or nil if err is not
// a validation error.
func Fields(err error) map[string]string {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Fields
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	if err := v.RegisterValidation("isodate", isISODate); err != nil {
		panic(fmt.Sprintf("failed to register isodate validation: %v", err))
	}
	if err := v.RegisterValidation("isodate_or_empty", isISODateOrEmpty); err != nil {
		panic(fmt.Sprintf("failed to register isodate_or_empty validation: %v", err))
	}
	return v
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := models.ParseDueDate(fl.Field().String(), time.UTC)
	return err == nil
}

// isISODateOrEmpty lets a patch clear the due date with "".
func isISODateOrEmpty(fl validator.FieldLevel) bool {
	if fl.Field().String() == "" {
		return true
	}
	return isISODate(fl)
}

// Struct validates any struct carrying validate tags.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fieldKey(fe.Namespace())
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = message(fe)
	}
	return &Error{Fields: fields}
}

func CreateTask(in models.TaskInput) error {
	return Struct(in)
}

func PatchTask(p models.TaskPatch) error {
	return Struct(p)
}

func Filter(f models.TaskFilter) error {
	return Struct(f)
}

func User(u models.User) error {
	return Struct(u)
}

func Preferences(p models.UserPreferences) error {
	return Struct(p)
}

// fieldKey drops the top level struct name from a namespace such as
// "TaskInput.subtasks[0].title".
func fieldKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return key
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		if fe.Tag() == "min" {
			return "Task title is required"
		}
		return fmt.Sprintf("Title must be less than %d characters", models.MaxTaskTitleLength)
	case "description":
		return fmt.Sprintf("Description must be less than %d characters", models.MaxTaskDescriptionLength)
	case "priority":
		return "Invalid priority"
	case "status":
		return "Invalid status"
	case "dueDate":
		return "Invalid due date"
	case "progress":
		return "Progress must be between 0 and 100"
	case "subtasks":
		return fmt.Sprintf("A task can have at most %d subtasks", models.MaxSubtasks)
	case "email":
		return "Invalid email address"
	case "password", "confirmPassword":
		if fe.Tag() == "eqfield" {
			return "Passwords do not match"
		}
		if fe.Param() == "1" {
			return "Password is required"
		}
		return fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	case "name":
		return "Name is required"
	case "role":
		return "Invalid role"
	case "theme":
		return "Invalid theme"
	case "language":
		return "Language is required"
	case "defaultView":
		return "Invalid default view"
	case "itemsPerPage":
		return fmt.Sprintf("Items per page must be between 1 and %d", models.MaxPageSize)
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}
