/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the message history endpoints: paginated group and direct
history by cursor timestamp, and the conversation list ordered by recency.
*/
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campuschat/internal/pkg/errs"
	"campuschat/internal/pkg/logx"
	"campuschat/internal/pkg/resp"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// HandleGroupHistory returns a page of group messages for a room, excluding
// messages from senders blocked relative to the viewer.
func HandleGroupHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := CurrentUser(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
			return
		}

		roomID := chi.URLParam(r, "roomID")
		if roomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		limit, before, customErr := parseHistoryQuery(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		messages, err := deps.Messages.ListGroup(r.Context(), roomID, viewer.ID, limit, before)
		if err != nil {
			logx.Error(err, "failed to load group history", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"messages": messages})
	}
}

// HandleDirectHistory returns a page of private messages between the viewer and
// another user. A blocked pair is rejected before the query runs.
func HandleDirectHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := CurrentUser(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
			return
		}

		peerID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		limit, before, customErr := parseHistoryQuery(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		blocked, err := deps.Blocks.IsBlocked(r.Context(), viewer.ID, peerID)
		if err != nil {
			logx.Error(err, "failed to check block relation for direct history")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}
		if blocked {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserBlocked))
			return
		}

		messages, err := deps.Messages.ListDirect(r.Context(), viewer.ID, peerID, limit, before)
		if err != nil {
			logx.Error(err, "failed to load direct history", "peer_id", peerID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"messages": messages})
	}
}

// HandleConversations returns the viewer's private conversation list, newest
// activity first.
func HandleConversations(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := CurrentUser(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthenticated))
			return
		}

		conversations, err := deps.Messages.Conversations(r.Context(), viewer.ID)
		if err != nil {
			logx.Error(err, "failed to load conversations")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"conversations": conversations})
	}
}

// parseHistoryQuery extracts the pagination parameters: limit (bounded) and the
// optional RFC 3339 cursor timestamp.
func parseHistoryQuery(r *http.Request) (int, *time.Time, *errs.CustomError) {
	limit := defaultHistoryLimit

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return 0, nil, errs.NewError(errs.ErrInvalidParams)
		}
		limit = min(parsed, maxHistoryLimit)
	}

	var before *time.Time
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		parsed, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			return 0, nil, errs.NewError(errs.ErrInvalidParams)
		}
		before = &parsed
	}

	return limit, before, nil
}
