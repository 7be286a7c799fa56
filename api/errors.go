package main

import (
	"net/http"

	"github.com/harlequingg/taskmanager/internal/logutil"
)

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	err := writeJSON(w, status, envelope{"message": message}, nil)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("unable to write error response")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs err and answers with a generic 500 that leaks no
// detail to the client.
func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).
		Str("method", r.Method).
		Str("uri", r.URL.RequestURI()).
		Msg("request failed")
	app.errorResponse(w, r, http.StatusInternalServerError, "Internal server error")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
