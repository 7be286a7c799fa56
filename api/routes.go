package main

import (
	"context"
	"net/http"
)

// routes builds the handler tree. Background work started for it stops when
// ctx is done.
func (app *application) routes(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	// the web frontend calls everything under /api
	for _, prefix := range []string{"", "/api"} {
		mux.HandleFunc("GET "+prefix+"/healthcheck", app.healthCheckHandler)

		mux.HandleFunc("POST "+prefix+"/register", app.registerUserHandler)
		mux.HandleFunc("POST "+prefix+"/login", app.loginUserHandler)

		mux.HandleFunc("GET "+prefix+"/tasks", app.requireAuthenticatedUser(app.listTasksHandler))
		mux.HandleFunc("POST "+prefix+"/tasks", app.requireAuthenticatedUser(app.createTaskHandler))
		mux.HandleFunc("PUT "+prefix+"/tasks/{id}", app.requireAuthenticatedUser(app.updateTaskHandler))
		mux.HandleFunc("PUT "+prefix+"/tasks/{id}/toggle", app.requireAuthenticatedUser(app.toggleTaskHandler))
		mux.HandleFunc("DELETE "+prefix+"/tasks/{id}", app.requireAuthenticatedUser(app.deleteTaskHandler))
	}

	var handler http.Handler = mux
	if app.config.limiter.enabled {
		handler = app.rateLimit(ctx, handler)
	}
	return app.recoverPanic(app.logRequests(app.enableCORS(handler)))
}
