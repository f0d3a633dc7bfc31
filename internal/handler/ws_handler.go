/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the WebSocket upgrade handler: rate limiting, credential
validation, the upgrade itself, and starting the client's pump goroutines.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"campuschat/internal/app/chat"
	"campuschat/internal/pkg/errs"
	"campuschat/internal/pkg/limiter"
	"campuschat/internal/pkg/logx"
	"campuschat/internal/pkg/resp"
)

// HandleWebSocket processes WebSocket connection requests. The bearer credential
// is supplied as a query parameter and validated before the upgrade; rejected
// connections never reach event-handling state.
func HandleWebSocket(upgrader websocket.Upgrader, connectLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !connectLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := r.URL.Query().Get("token")

		u, customErr := deps.Gate.Authenticate(r.Context(), token)
		if customErr != nil {
			logx.Warn("WebSocket connection rejected: authentication failed.", "code", customErr.Code)
			resp.RespondError(w, r, customErr)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, deps.Service, conn, u)

		go client.WritePump()

		deps.Hub.Register(client)

		logx.Info("WebSocket connection established",
			"user_id", u.ID.String(), "faculty", u.Faculty)

		client.ReadPump()
	}
}
