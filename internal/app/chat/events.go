/*
Package chat contains the real-time messaging core: connection lifecycle and presence,
room and direct-message fan-out under the mutual-block policy, content filtering,
message retention, and the periodic settings broadcast.

This file defines the wire event types and payload shapes exchanged over a WebSocket
connection. Every frame is an Envelope carrying an event type and a JSON payload.
*/
package chat

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// EventType identifies the kind of an inbound or outbound event.
type EventType string

// Inbound event types, produced by clients.
const (
	TypeJoinRoom       EventType = "join_room"
	TypeGroupMessage   EventType = "group_message"
	TypePrivateMessage EventType = "private_message"
	TypeBlockUser      EventType = "block_user"
	TypeUnblockUser    EventType = "unblock_user"
	TypeReportUser     EventType = "report_user"
)

// Outbound event types, produced by the server.
const (
	TypeNewMessage        EventType = "new_message"
	TypeNewPrivateMessage EventType = "new_private_message"
	TypeUserBlocked       EventType = "user_blocked"
	TypeUserUnblocked     EventType = "user_unblocked"
	TypeUserReported      EventType = "user_reported"
	TypeSettingsUpdate    EventType = "settings_update"
	TypeError             EventType = "error"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRoomPayload asks to subscribe the connection to a room.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// GroupMessagePayload carries a message addressed to a room.
type GroupMessagePayload struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// PrivateMessagePayload carries a message addressed to a single user.
type PrivateMessagePayload struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	Content    string    `json:"content"`
}

// TargetUserPayload names the target of a block, unblock, or report action.
type TargetUserPayload struct {
	UserID uuid.UUID `json:"userId"`
}

// SettingsUpdatePayload is pushed periodically to every live connection.
type SettingsUpdatePayload struct {
	DailyTopic string `json:"dailyTopic"`
	Rules      string `json:"rules"`
}

// ErrorPayload reports a failed inbound event back to its connection.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// marshalEvent wraps a payload in an Envelope and encodes the full frame.
func marshalEvent(eventType EventType, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return json.Marshal(Envelope{Type: eventType, Payload: payloadBytes})
}
