package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/htol/booksapi/api"
	"github.com/htol/booksapi/config"
	"github.com/htol/booksapi/logger"
)

// serve runs the HTTP server until ctx is cancelled or the server fails.
// Either way in-flight requests get the shutdown timeout to finish; a
// server failure is returned so the process exits non-zero.
func (app *appEnv) serve(ctx context.Context) error {
	cfg := app.config.Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewHandler(app.service, app.config.Env),

		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(guard("http server", func() error {
		logger.Info("Server listening", "port", cfg.Port, "env", app.config.Env, "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	}))

	g.Go(guard("shutdown", func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(app.config))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("Server stopped")
		return nil
	}))

	return g.Wait()
}

// guard turns a panic in fn into an error so the group shuts down
func guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = pkgerrors.Errorf("%s panicked: %v", name, p)
			}
		}()
		return fn()
	}
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Server.ShutdownTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.Server.ShutdownTimeout) * time.Second
}
