package main

import (
	"errors"
	"net/http"

	"github.com/harlequingg/taskmanager/internal/tasks"
	"github.com/harlequingg/taskmanager/internal/validator"
)

func (app *application) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.tasks.List(r.Context(), contextGetUserID(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	err = writeJSON(w, http.StatusOK, list, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title string `json:"title"`
	}
	err := readJSON(w, r, &input)
	if err != nil && !errors.Is(err, errEmptyBody) {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	task, err := app.tasks.Create(r.Context(), contextGetUserID(r), input.Title)
	if err != nil {
		app.taskErrorResponse(w, r, err)
		return
	}
	err = writeJSON(w, http.StatusOK, task, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title *string `json:"title"`
	}
	err := readJSON(w, r, &input)
	if err != nil && !errors.Is(err, errEmptyBody) {
		app.badRequestResponse(w, r, err.Error())
		return
	}
	var title string
	if input.Title != nil {
		title = *input.Title
	}

	task, err := app.tasks.Update(r.Context(), contextGetUserID(r), r.PathValue("id"), title)
	if err != nil {
		app.taskErrorResponse(w, r, err)
		return
	}
	err = writeJSON(w, http.StatusOK, task, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) toggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, err := app.tasks.Toggle(r.Context(), contextGetUserID(r), r.PathValue("id"))
	if err != nil {
		app.taskErrorResponse(w, r, err)
		return
	}
	err = writeJSON(w, http.StatusOK, task, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	err := app.tasks.Delete(r.Context(), contextGetUserID(r), r.PathValue("id"))
	if err != nil {
		app.taskErrorResponse(w, r, err)
		return
	}
	err = writeJSON(w, http.StatusOK, envelope{"message": "Task deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) taskErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr):
		app.badRequestResponse(w, r, verr.Message)
	case errors.Is(err, tasks.ErrNotFound):
		app.notFoundResponse(w, r, tasks.ErrNotFound.Error())
	case errors.Is(err, tasks.ErrForbidden):
		app.unauthorizedResponse(w, r, tasks.ErrForbidden.Error())
	default:
		app.serverErrorResponse(w, r, err)
	}
}
