/*
Package chat contains the real-time messaging core.

This file defines the Client struct, representing one authenticated WebSocket
connection. It runs the read and write pumps, dispatches inbound events to the
messaging service in arrival order, and queues outbound frames.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"campuschat/internal/app/user"
	"campuschat/internal/pkg/errs"
	"campuschat/internal/pkg/logx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// MaxContentBytes is the maximum allowed size of message text.
	MaxContentBytes = 5000

	// eventTimeout bounds the handling of a single inbound event so one hung
	// persistence call cannot wedge the connection's read loop forever.
	eventTimeout = 10 * time.Second

	// WsCloseCodeSessionReplaced is a custom WebSocket close code (4000-4999
	// range) signalling that the session was replaced by a newer connection.
	WsCloseCodeSessionReplaced = 4001
)

// Client represents an active, authenticated WebSocket connection.
type Client struct {
	// hub is the presence registry the client is registered in.
	hub *Hub

	// service handles the messaging operations the client's events map to.
	service *Service

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	// user is the identity resolved at handshake time; it is trusted for the
	// whole connection lifetime.
	user user.User

	// send queues outbound frames for the write pump.
	send chan []byte

	// rooms is the set of room identifiers this connection subscribed to.
	// Guarded by hub.mu.
	rooms map[string]struct{}

	logger zerolog.Logger
}

// NewClient constructs a Client for a resolved user identity.
func NewClient(hub *Hub, service *Service, conn *websocket.Conn, u user.User) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", u.ID.String()).
		Str("faculty", u.Faculty).
		Logger()

	return &Client{
		hub:     hub,
		service: service,
		conn:    conn,
		user:    u,
		send:    make(chan []byte, 256),
		rooms:   make(map[string]struct{}),
		logger:  clientLogger,
	}
}

// User returns the identity this connection authenticated as.
func (c *Client) User() user.User {
	return c.user
}

// ReadPump reads frames from the connection and dispatches them one at a time,
// preserving arrival order for this connection. It unregisters the client and
// closes the transport when the loop ends.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundEvent(frame)
	}
}

// cleanupOnDisconnect runs when the read pump terminates, for any reason.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent decodes one frame and routes it by event type. A malformed
// or failing event degrades to an error frame on this connection only.
func (c *Client) processInboundEvent(frame []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		c.logger.Warn().Err(err).Bytes("frame", frame).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch envelope.Type {
	case TypeJoinRoom:
		c.handleJoinRoom(envelope.Payload)

	case TypeGroupMessage:
		c.handleGroupMessage(ctx, envelope.Payload)

	case TypePrivateMessage:
		c.handlePrivateMessage(ctx, envelope.Payload)

	case TypeBlockUser:
		c.handleModeration(ctx, envelope.Payload, TypeBlockUser)

	case TypeUnblockUser:
		c.handleModeration(ctx, envelope.Payload, TypeUnblockUser)

	case TypeReportUser:
		c.handleModeration(ctx, envelope.Payload, TypeReportUser)

	default:
		c.logger.Warn().Str("event_type", string(envelope.Type)).Msg("Client sent unsupported event type")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
	}
}

// handleJoinRoom subscribes the connection to an additional room.
func (c *Client) handleJoinRoom(payload json.RawMessage) {
	var join JoinRoomPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid join_room payload")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if strings.TrimSpace(join.RoomID) == "" {
		c.SendError(errs.NewError(errs.ErrRoomNotFound))
		return
	}

	c.hub.Join(c, join.RoomID)
}

// handleGroupMessage validates and forwards a room message to the service.
func (c *Client) handleGroupMessage(ctx context.Context, payload json.RawMessage) {
	var msg GroupMessagePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid group_message payload")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if customErr := validateContent(msg.Content); customErr != nil {
		c.SendError(customErr)
		return
	}

	if customErr := c.service.SendGroup(ctx, c.user, msg.RoomID, msg.Content); customErr != nil {
		c.SendError(customErr)
	}
}

// handlePrivateMessage validates and forwards a direct message to the service.
func (c *Client) handlePrivateMessage(ctx context.Context, payload json.RawMessage) {
	var msg PrivateMessagePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid private_message payload")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if customErr := validateContent(msg.Content); customErr != nil {
		c.SendError(customErr)
		return
	}

	if customErr := c.service.SendDirect(ctx, c.user, msg.ReceiverID, msg.Content); customErr != nil {
		c.SendError(customErr)
	}
}

// handleModeration routes block, unblock, and report actions and acknowledges
// them back to the caller on success.
func (c *Client) handleModeration(ctx context.Context, payload json.RawMessage, action EventType) {
	var target TargetUserPayload
	if err := json.Unmarshal(payload, &target); err != nil {
		c.logger.Warn().Err(err).Str("action", string(action)).Msg("Client sent invalid moderation payload")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if target.UserID == c.user.ID {
		c.SendError(errs.NewError(errs.ErrBlockSelf))
		return
	}

	var customErr *errs.CustomError
	var ack EventType

	switch action {
	case TypeBlockUser:
		customErr = c.service.Block(ctx, c.user.ID, target.UserID)
		ack = TypeUserBlocked
	case TypeUnblockUser:
		customErr = c.service.Unblock(ctx, c.user.ID, target.UserID)
		ack = TypeUserUnblocked
	case TypeReportUser:
		customErr = c.service.Report(ctx, c.user.ID, target.UserID)
		ack = TypeUserReported
	}

	if customErr != nil {
		c.SendError(customErr)
		return
	}

	frame, err := marshalEvent(ack, TargetUserPayload{UserID: target.UserID})
	if err != nil {
		c.logger.Error().Err(err).Str("ack", string(ack)).Msg("Failed to build moderation ack")
		return
	}

	if !c.enqueue(frame) {
		c.logger.Warn().Str("ack", string(ack)).Msg("Failed to queue moderation ack")
	}
}

// validateContent rejects empty and oversized message text.
func validateContent(content string) *errs.CustomError {
	if strings.TrimSpace(content) == "" {
		return errs.NewError(errs.ErrMessageContentEmpty)
	}
	if len(content) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}
	return nil
}

// WritePump writes queued frames to the connection and keeps the heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns false when the write pump should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePing sends the periodic heartbeat.
// Returns false when the write pump should terminate.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue attempts a non-blocking push onto the send channel. It reports false
// when the queue is full; the caller decides whether that is fatal.
func (c *Client) enqueue(frame []byte) (queued bool) {
	defer func() {
		// The send channel is closed during kick/shutdown while broadcasters may
		// still hold a snapshot referencing this client.
		if r := recover(); r != nil {
			queued = false
		}
	}()

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// SendError queues a TypeError frame describing a failed inbound event.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	frame, marshalErr := marshalEvent(TypeError, ErrorPayload{Code: code, Message: message})
	if marshalErr != nil {
		c.logger.Error().Err(marshalErr).Msg("Failed to build error frame")
		return
	}

	if !c.enqueue(frame) {
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Failed to queue error frame")
	}
}

// Kick closes the connection with a close frame signalling that the session was
// replaced by a newer connection, then shuts the send queue down.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionReplaced).
		Str("reason", reason).
		Msg("Kicking connection.")

	if c.conn != nil {
		closeFrame := websocket.FormatCloseMessage(WsCloseCodeSessionReplaced, reason)

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteMessage(websocket.CloseMessage, closeFrame); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to send session-replaced close frame.")
		}
	}

	select {
	case <-c.send:
	default:
		close(c.send)
	}
}
