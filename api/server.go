package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests and background jobs.
func (app *application) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.port),
		Handler:           app.routes(ctx),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ErrorLog:          stdlog.New(app.logger.With().Str("component", "http").Logger(), "", 0),
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		app.logger.Info().Str("env", app.config.env).Str("addr", srv.Addr).Msg("Starting HTTP server")
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		<-ctx.Done()
		app.logger.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		app.logger.Info().Msg("Waiting for background tasks")
		app.wg.Wait()
		app.logger.Info().Msg("Shutdown completed")
		return err
	})
	return grp.Wait()
}

// background runs fn in its own goroutine; the server waits for it on shutdown.
func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Error().Interface("panic", err).Msg("background task panicked")
			}
		}()
		fn()
	}()
}
