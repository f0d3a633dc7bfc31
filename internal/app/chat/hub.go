/*
Package chat contains the real-time messaging core.

This file defines the Hub, the process-wide presence registry. It maps each user
identity to its single live connection and tracks per-room subscriptions. The Hub is
the only mutable shared structure in the core; one lock serializes every mutation,
which gives register/unregister the per-user ordering the delivery path relies on.
*/
package chat

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campuschat/internal/pkg/logx"
)

// Hub tracks live connections and their room subscriptions.
type Hub struct {
	// mu protects sessions and rooms.
	mu sync.RWMutex

	// sessions maps a user identity to its current live connection.
	// Exactly one entry per identity; a newer connection replaces the older one.
	sessions map[uuid.UUID]*Client

	// rooms maps a room identifier to the set of subscribed connections, keyed by
	// user identity.
	rooms map[string]map[uuid.UUID]*Client

	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]*Client),
		rooms:    make(map[string]map[uuid.UUID]*Client),
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Register records the client as the live connection for its user, replacing and
// kicking any previous connection (last writer wins). The client is subscribed to
// its faculty room as part of registration.
func (h *Hub) Register(client *Client) {
	userID := client.user.ID

	h.mu.Lock()

	var superseded *Client
	if existing, ok := h.sessions[userID]; ok && existing != client {
		h.removeLocked(existing)
		superseded = existing
	}

	h.sessions[userID] = client
	h.joinLocked(client, client.user.Faculty)

	total := len(h.sessions)
	h.mu.Unlock()

	// The kick writes a close frame under a network deadline; doing it under
	// h.mu would let one slow peer stall every registry operation.
	if superseded != nil {
		h.logger.Warn().
			Str("user_id", userID.String()).
			Msg("User already connected. Replacing old connection.")

		superseded.Kick("Session replaced by new connection.")
	}

	h.logger.Info().
		Str("user_id", userID.String()).
		Str("faculty", client.user.Faculty).
		Int("online", total).
		Msg("Client registered.")
}

// Unregister removes the client from the registry, but only while it is still the
// registered connection for its user. A stale disconnect arriving after a newer
// connection registered must not evict that newer connection.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()

	current, ok := h.sessions[client.user.ID]
	if !ok || current != client {
		h.mu.Unlock()
		h.logger.Info().
			Str("user_id", client.user.ID.String()).
			Msg("Ignoring unregister for stale connection.")
		return
	}

	h.removeLocked(client)
	total := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info().
		Str("user_id", client.user.ID.String()).
		Int("online", total).
		Msg("Client unregistered.")
}

// removeLocked drops the client from the session map and every room set.
// Callers must hold h.mu.
func (h *Hub) removeLocked(client *Client) {
	delete(h.sessions, client.user.ID)

	for roomID := range client.rooms {
		members, ok := h.rooms[roomID]
		if !ok {
			continue
		}
		if members[client.user.ID] == client {
			delete(members, client.user.ID)
		}
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Join subscribes the client to a room.
func (h *Hub) Join(client *Client, roomID string) {
	if roomID == "" {
		return
	}

	h.mu.Lock()
	h.joinLocked(client, roomID)
	h.mu.Unlock()
}

// joinLocked adds the client to the room's member set. Callers must hold h.mu.
func (h *Hub) joinLocked(client *Client, roomID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]*Client)
		h.rooms[roomID] = members
	}
	members[client.user.ID] = client
	client.rooms[roomID] = struct{}{}
}

// Lookup returns the live connection for a user identity, if any.
func (h *Hub) Lookup(userID uuid.UUID) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.sessions[userID]
	return client, ok
}

// RoomSnapshot resolves the live membership of a room at this instant. Fan-out uses
// the snapshot, so a member joining mid-send may miss the message and a member
// leaving after the snapshot still receives it.
func (h *Hub) RoomSnapshot(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomID]
	snapshot := make([]*Client, 0, len(members))
	for _, client := range members {
		snapshot = append(snapshot, client)
	}
	return snapshot
}

// BroadcastAll enqueues the frame on every live connection, independent of room
// membership. A full send queue on one connection does not affect the others.
func (h *Hub) BroadcastAll(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.sessions {
		if !client.enqueue(frame) {
			h.logger.Warn().
				Str("user_id", client.user.ID.String()).
				Msg("Send queue full during broadcast, frame dropped.")
		}
	}
}

// Online reports the number of live connections.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}
