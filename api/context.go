package main

import (
	"context"
	"net/http"
)

type contextKey string

const userIDContextKey contextKey = "userID"

func contextSetUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDContextKey, userID)
	return r.WithContext(ctx)
}

// contextGetUserID returns the subject stored by requireAuthenticatedUser. It
// panics when called outside that middleware.
func contextGetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(userIDContextKey).(string)
	if !ok {
		panic("missing user id in request context")
	}
	return userID
}
