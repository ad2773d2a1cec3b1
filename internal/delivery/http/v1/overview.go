package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskrabbit/internal/models"
)

func (h *handlerImpl) HandleGetCalendar(c *gin.Context) {
	date, ok := c.GetQuery("date")
	if !ok {
		h.logger.Error().Msg("no date provided")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	day, err := models.ParseDueDate(date, time.Local)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("date", date).
			Msg("invalid date")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	tasks := h.tasks.TasksDueOn(c.Request.Context(), day)
	h.logger.Debug().
		Str("date", date).
		Int("count", len(tasks)).
		Msg("fetched calendar day")
	c.JSON(http.StatusOK, nonNil(tasks))
}

func (h *handlerImpl) HandleGetAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.analytics.Stats(c.Request.Context()))
}

func (h *handlerImpl) HandleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.preferences.Preferences(c.Request.Context()))
}

func (h *handlerImpl) HandleUpdatePreferences(c *gin.Context) {
	var req models.UserPreferences
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	prefs, err := h.preferences.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update preferences")
		abort(c, taskError(err))
		return
	}

	h.logger.Info().Msg("updated preferences")
	c.JSON(http.StatusOK, prefs)
}
