package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskrabbit/internal/filter"
	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/services"
	"github.com/adanyl0v/taskrabbit/internal/validation"
)

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	var req models.TaskInput
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = userID
	}

	task, err := h.tasks.AddTask(c.Request.Context(), req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, taskError(err))
		return
	}

	h.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, task)
}

// HandleGetTasks lists every task narrowed by the query parameters,
// which use the same predicates as the stored filter.
func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	f := models.TaskFilter{}
	if status, ok := c.GetQuery("status"); ok {
		s := models.Status(status)
		f.Status = &s
	}
	if priority, ok := c.GetQuery("priority"); ok {
		p := models.Priority(priority)
		f.Priority = &p
	}
	if assignedTo, ok := c.GetQuery("assignedTo"); ok {
		f.AssignedTo = &assignedTo
	}
	if dueDate, ok := c.GetQuery("dueDate"); ok {
		f.DueDate = &dueDate
	}
	if tags := c.Query("tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}

	err := validation.Filter(f)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("invalid task filter")
		abort(c, taskError(err))
		return
	}

	ctx := c.Request.Context()
	tasks := h.tasks.Tasks(ctx)
	if sortBy, ok := c.GetQuery("sortBy"); ok {
		by := models.SortBy(sortBy)
		if !by.Valid() {
			h.logger.Error().
				Str("sort_by", sortBy).
				Msg("invalid sort field")
			abort(c, newBadRequestError(errInvalidQuery.Error()))
			return
		}
		tasks = h.tasks.SortedTasks(ctx, by)
	}
	// Apply keeps the order
	tasks = filter.Apply(tasks, f)

	h.logger.Debug().
		Int("count", len(tasks)).
		Msg("fetched tasks")
	c.JSON(http.StatusOK, nonNil(tasks))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.tasks.GetTaskByID(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		abort(c, taskError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID := c.Param("id")

	var req models.TaskPatch
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), taskID, req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		abort(c, taskError(err))
		return
	}
	if task == nil {
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return
	}

	h.logger.Info().
		Str("task_id", taskID).
		Msg("updated task")
	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleToggleTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.tasks.ToggleComplete(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to toggle task")
		abort(c, taskError(err))
		return
	}
	if task == nil {
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return
	}

	h.logger.Info().
		Str("task_id", taskID).
		Str("status", string(task.Status)).
		Msg("toggled task")
	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	ctx := c.Request.Context()

	_, err := h.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("task not found")
		abort(c, taskError(err))
		return
	}

	err = h.tasks.DeleteTask(ctx, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abort(c, taskError(err))
		return
	}

	h.logger.Info().
		Str("task_id", taskID).
		Msg("deleted task")
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleGetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, h.tasks.Filter())
}

func (h *handlerImpl) HandleSetFilter(c *gin.Context) {
	var req models.TaskFilter
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.tasks.SetFilter(c.Request.Context(), req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to set filter")
		abort(c, taskError(err))
		return
	}

	c.JSON(http.StatusOK, h.tasks.Filter())
}

func (h *handlerImpl) HandleGetFilteredTasks(c *gin.Context) {
	tasks := h.tasks.GetFilteredTasks(c.Request.Context())
	c.JSON(http.StatusOK, nonNil(tasks))
}

func taskError(err error) apiError {
	if apiErr, ok := newValidationError(err); ok {
		return apiErr
	}

	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(services.ErrTaskNotFound.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}

func nonNil(tasks []models.Task) []models.Task {
	if tasks == nil {
		return make([]models.Task, 0)
	}
	return tasks
}
