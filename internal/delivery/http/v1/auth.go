package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/services"
)

type sessionResponse struct {
	User  *models.User     `json:"user"`
	Token string           `json:"token,omitempty"`
	State models.AuthState `json:"state"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req services.LoginParams
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("email", req.Email).
			Msg("failed to login")
		abort(c, authError(err))
		return
	}

	h.logger.Info().
		Str("user_id", session.User.ID).
		Msg("logged in")
	c.JSON(http.StatusOK, sessionResponse{
		User:  session.User,
		Token: session.Token,
		State: h.auth.State(),
	})
}

func (h *handlerImpl) HandleSignup(c *gin.Context) {
	var req services.SignupParams
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	session, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("email", req.Email).
			Msg("failed to sign up")
		abort(c, authError(err))
		return
	}

	h.logger.Info().
		Str("user_id", session.User.ID).
		Msg("signed up")
	c.JSON(http.StatusCreated, sessionResponse{
		User:  session.User,
		Token: session.Token,
		State: h.auth.State(),
	})
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	err := h.auth.Logout(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to logout")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.logger.Info().
		Str("user_id", userID).
		Msg("logged out")
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleGetSession(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		User:  user,
		State: h.auth.State(),
	})
}

func authError(err error) apiError {
	if apiErr, ok := newValidationError(err); ok {
		return apiErr
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return newUnauthorizedError(services.ErrUserNotFound.Error())
	case errors.Is(err, services.ErrUserPasswordMismatch):
		return newUnauthorizedError(services.ErrUserPasswordMismatch.Error())
	case errors.Is(err, services.ErrUserAlreadyExists):
		return newConflictError(services.ErrUserAlreadyExists.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newStatusTextError(http.StatusRequestTimeout)
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
