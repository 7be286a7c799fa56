package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/harlequingg/taskmanager/internal/accounts"
	"github.com/harlequingg/taskmanager/internal/validator"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input accounts.RegisterInput
	err := readStrictJSON(w, r, &input)
	if err != nil && !errors.Is(err, errEmptyBody) {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	u, err := app.accounts.Register(r.Context(), input)
	if err != nil {
		app.accountErrorResponse(w, r, err)
		return
	}

	if app.mailer != nil {
		log := app.logger.With().Str("user_id", u.ID).Logger()
		app.background(func() {
			err := app.mailer.Send(context.Background(), u.Email, "welcome.tmpl", u)
			if err != nil {
				log.Error().Err(err).Msg("unable to send welcome e-mail")
			}
		})
	}

	err = writeJSON(w, http.StatusCreated, envelope{"message": "User registered successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input accounts.LoginInput
	err := readStrictJSON(w, r, &input)
	if err != nil && !errors.Is(err, errEmptyBody) {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	token, _, err := app.accounts.Login(r.Context(), input)
	if err != nil {
		app.accountErrorResponse(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, envelope{"message": "Login successful", "token": token}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// accountErrorResponse answers validation failures, conflicts and credential
// rejections with 400 and their own message; anything else is a 500.
func (app *application) accountErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validator.Error
	var aerr accounts.Error
	switch {
	case errors.As(err, &verr):
		app.badRequestResponse(w, r, verr.Message)
	case errors.As(err, &aerr):
		app.badRequestResponse(w, r, aerr.Error())
	default:
		app.serverErrorResponse(w, r, err)
	}
}
