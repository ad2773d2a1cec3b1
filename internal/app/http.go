package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskrabbit/internal/config"
	"github.com/adanyl0v/taskrabbit/internal/delivery/http/v1"
)

// NewRouter builds the gin engine serving the local JSON API.
func (a *App) NewRouter() *gin.Engine {
	if a.Config.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	handler := v1.New(
		a.Logger.With().Str("component", "http").Logger(),
		a.Auth,
		a.Tasks,
		a.Analytics,
		a.Preferences,
	)
	v1.RegisterRoutes(router.Group("/api/v1"), handler)
	return router
}

// ListenAndServeHTTP serves until ctx is done, then shuts the server
// down gracefully within the configured timeout.
func (a *App) ListenAndServeHTTP(ctx context.Context) error {
	httpCfg := a.Config.HTTP

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: a.NewRouter(),
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	a.Logger.Info().Msg("shut down http server")
	return nil
}
