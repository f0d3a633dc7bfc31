/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the authentication middleware guarding the REST surface. Unlike
the WebSocket handshake, which authenticates once per connection, every REST request
carries its own bearer credential.
*/
package handler

import (
	"context"
	"net/http"
	"strings"

	"campuschat/internal/app/user"
	"campuschat/internal/pkg/errs"
	"campuschat/internal/pkg/resp"
)

type contextKey string

// contextUserKey stores the resolved user record in the request context.
const contextUserKey contextKey = "current_user"

// RequireUser rejects requests without a valid bearer credential and injects the
// resolved active user into the request context.
func RequireUser(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
				return
			}

			u, customErr := deps.Gate.Authenticate(r.Context(), parts[1])
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}

			ctx := context.WithValue(r.Context(), contextUserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser extracts the authenticated user from the request context.
// The boolean is false on routes not guarded by RequireUser.
func CurrentUser(r *http.Request) (user.User, bool) {
	u, ok := r.Context().Value(contextUserKey).(user.User)
	return u, ok
}
