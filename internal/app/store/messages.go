/*
Package store contains the PostgreSQL repositories backing the messaging core:
messages, block relations, moderation settings, and user lookups.

Repositories return plain structs and wrap driver failures so callers can surface
them as storage errors without leaking SQL details.
*/
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"campuschat/internal/app/user"
)

// Message is a persisted chat message, group or private, together with the sender
// (and for private messages the receiver) summary used on the wire.
type Message struct {
	ID         uuid.UUID     `json:"id"`
	Content    string        `json:"content"`
	IsPrivate  bool          `json:"isPrivate"`
	RoomID     string        `json:"roomId,omitempty"`
	SenderID   uuid.UUID     `json:"senderId"`
	ReceiverID *uuid.UUID    `json:"receiverId,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	Sender     user.Summary  `json:"sender"`
	Receiver   *user.Summary `json:"receiver,omitempty"`
}

// PendingMessage is the slice of a message needed to re-arm retention timers on boot.
type PendingMessage struct {
	ID        uuid.UUID
	IsPrivate bool
	CreatedAt time.Time
}

// Conversation is one entry of a user's private conversation list.
type Conversation struct {
	Peer          user.Summary `json:"user"`
	LastMessage   Message      `json:"lastMessage"`
	LastMessageAt time.Time    `json:"lastMessageAt"`
}

// Messages is the repository for the messages table.
type Messages struct {
	pool *pgxpool.Pool
}

// NewMessages constructs the message repository.
func NewMessages(pool *pgxpool.Pool) *Messages {
	return &Messages{pool: pool}
}

const senderSummaryColumns = `u.full_name, u.faculty, u.degree, u.course, COALESCE(u.profile_picture, '')`

// CreateGroup persists a group message and returns it with the sender summary attached.
func (s *Messages) CreateGroup(ctx context.Context, roomID string, senderID uuid.UUID, content string) (Message, error) {
	const q = `
		WITH m AS (
			INSERT INTO messages (id, content, is_private, room_id, sender_id)
			VALUES ($1, $2, FALSE, $3, $4)
			RETURNING id, content, room_id, sender_id, created_at
		)
		SELECT m.id, m.content, m.room_id, m.sender_id, m.created_at, ` + senderSummaryColumns + `
		FROM m
		JOIN users u ON u.id = m.sender_id`

	msg := Message{}
	err := s.pool.QueryRow(ctx, q, uuid.New(), content, roomID, senderID).Scan(
		&msg.ID, &msg.Content, &msg.RoomID, &msg.SenderID, &msg.CreatedAt,
		&msg.Sender.FullName, &msg.Sender.Faculty, &msg.Sender.Degree,
		&msg.Sender.Course, &msg.Sender.ProfilePicture,
	)
	if err != nil {
		return Message{}, fmt.Errorf("create group message: %w", err)
	}

	msg.Sender.ID = msg.SenderID
	return msg, nil
}

// CreateDirect persists a private message and returns it with both summaries attached.
func (s *Messages) CreateDirect(ctx context.Context, senderID, receiverID uuid.UUID, content string) (Message, error) {
	const q = `
		WITH m AS (
			INSERT INTO messages (id, content, is_private, sender_id, receiver_id)
			VALUES ($1, $2, TRUE, $3, $4)
			RETURNING id, content, sender_id, receiver_id, created_at
		)
		SELECT m.id, m.content, m.sender_id, m.receiver_id, m.created_at,
		       s.full_name, s.faculty, s.degree, s.course, COALESCE(s.profile_picture, ''),
		       r.full_name, r.faculty, r.degree, r.course, COALESCE(r.profile_picture, '')
		FROM m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.receiver_id`

	msg := Message{IsPrivate: true, Receiver: &user.Summary{}}
	var rcvID uuid.UUID
	err := s.pool.QueryRow(ctx, q, uuid.New(), content, senderID, receiverID).Scan(
		&msg.ID, &msg.Content, &msg.SenderID, &rcvID, &msg.CreatedAt,
		&msg.Sender.FullName, &msg.Sender.Faculty, &msg.Sender.Degree,
		&msg.Sender.Course, &msg.Sender.ProfilePicture,
		&msg.Receiver.FullName, &msg.Receiver.Faculty, &msg.Receiver.Degree,
		&msg.Receiver.Course, &msg.Receiver.ProfilePicture,
	)
	if err != nil {
		return Message{}, fmt.Errorf("create direct message: %w", err)
	}

	msg.Sender.ID = msg.SenderID
	msg.ReceiverID = &rcvID
	msg.Receiver.ID = rcvID
	return msg, nil
}

// ListGroup returns the `limit` most recent group messages of a room strictly before
// the cursor (or now when absent), excluding senders blocked in either direction
// relative to the viewer. The page is returned oldest first.
func (s *Messages) ListGroup(ctx context.Context, roomID string, viewerID uuid.UUID, limit int, before *time.Time) ([]Message, error) {
	const q = `
		SELECT m.id, m.content, m.room_id, m.sender_id, m.created_at, ` + senderSummaryColumns + `
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		  AND NOT m.is_private
		  AND m.sender_id NOT IN (
			SELECT CASE WHEN b.blocker_id = $2 THEN b.blocked_id ELSE b.blocker_id END
			FROM blocks b
			WHERE b.blocker_id = $2 OR b.blocked_id = $2
		  )
		  AND ($3::timestamptz IS NULL OR m.created_at < $3)
		ORDER BY m.created_at DESC
		LIMIT $4`

	rows, err := s.pool.Query(ctx, q, roomID, viewerID, cursorParam(before), limit)
	if err != nil {
		return nil, fmt.Errorf("list group messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		msg := Message{}
		err := rows.Scan(
			&msg.ID, &msg.Content, &msg.RoomID, &msg.SenderID, &msg.CreatedAt,
			&msg.Sender.FullName, &msg.Sender.Faculty, &msg.Sender.Degree,
			&msg.Sender.Course, &msg.Sender.ProfilePicture,
		)
		if err != nil {
			return nil, fmt.Errorf("scan group message: %w", err)
		}
		msg.Sender.ID = msg.SenderID
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list group messages: %w", err)
	}

	return lo.Reverse(messages), nil
}

// ListDirect returns the `limit` most recent private messages between two users
// strictly before the cursor, oldest first. The blocked-pair check belongs to the
// caller; this query only pages.
func (s *Messages) ListDirect(ctx context.Context, a, b uuid.UUID, limit int, before *time.Time) ([]Message, error) {
	const q = `
		SELECT m.id, m.content, m.sender_id, m.receiver_id, m.created_at,
		       s.full_name, s.faculty, s.degree, s.course, COALESCE(s.profile_picture, ''),
		       r.full_name, r.faculty, r.degree, r.course, COALESCE(r.profile_picture, '')
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.receiver_id
		WHERE m.is_private
		  AND ((m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1))
		  AND ($3::timestamptz IS NULL OR m.created_at < $3)
		ORDER BY m.created_at DESC
		LIMIT $4`

	rows, err := s.pool.Query(ctx, q, a, b, cursorParam(before), limit)
	if err != nil {
		return nil, fmt.Errorf("list direct messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		msg := Message{IsPrivate: true, Receiver: &user.Summary{}}
		var rcvID uuid.UUID
		err := rows.Scan(
			&msg.ID, &msg.Content, &msg.SenderID, &rcvID, &msg.CreatedAt,
			&msg.Sender.FullName, &msg.Sender.Faculty, &msg.Sender.Degree,
			&msg.Sender.Course, &msg.Sender.ProfilePicture,
			&msg.Receiver.FullName, &msg.Receiver.Faculty, &msg.Receiver.Degree,
			&msg.Receiver.Course, &msg.Receiver.ProfilePicture,
		)
		if err != nil {
			return nil, fmt.Errorf("scan direct message: %w", err)
		}
		msg.Sender.ID = msg.SenderID
		msg.ReceiverID = &rcvID
		msg.Receiver.ID = rcvID
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list direct messages: %w", err)
	}

	return lo.Reverse(messages), nil
}

// Conversations returns one entry per private-message peer of the user, newest
// activity first, each carrying the peer summary and the latest message.
func (s *Messages) Conversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	const q = `
		SELECT p.id, p.full_name, p.faculty, p.degree, p.course, COALESCE(p.profile_picture, ''),
		       last.id, last.content, last.sender_id, last.receiver_id, last.created_at,
		       conv.last_at
		FROM (
			SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id,
			       MAX(created_at) AS last_at
			FROM messages
			WHERE is_private AND (sender_id = $1 OR receiver_id = $1)
			GROUP BY peer_id
		) conv
		JOIN users p ON p.id = conv.peer_id
		JOIN LATERAL (
			SELECT id, content, sender_id, receiver_id, created_at
			FROM messages
			WHERE is_private
			  AND ((sender_id = $1 AND receiver_id = conv.peer_id)
			    OR (sender_id = conv.peer_id AND receiver_id = $1))
			ORDER BY created_at DESC
			LIMIT 1
		) last ON TRUE
		ORDER BY conv.last_at DESC`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		conv := Conversation{LastMessage: Message{IsPrivate: true}}
		var rcvID uuid.UUID
		err := rows.Scan(
			&conv.Peer.ID, &conv.Peer.FullName, &conv.Peer.Faculty,
			&conv.Peer.Degree, &conv.Peer.Course, &conv.Peer.ProfilePicture,
			&conv.LastMessage.ID, &conv.LastMessage.Content,
			&conv.LastMessage.SenderID, &rcvID, &conv.LastMessage.CreatedAt,
			&conv.LastMessageAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conv.LastMessage.ReceiverID = &rcvID
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	return conversations, nil
}

// Delete removes a message. Deleting an already-absent message is not an error.
func (s *Messages) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// ListPending returns the id, channel kind, and creation time of every stored
// message, used at startup to recompute retention timers.
func (s *Messages) ListPending(ctx context.Context) ([]PendingMessage, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, is_private, created_at FROM messages`)
	if err != nil {
		return nil, fmt.Errorf("list pending messages: %w", err)
	}
	defer rows.Close()

	pending := []PendingMessage{}
	for rows.Next() {
		p := PendingMessage{}
		if err := rows.Scan(&p.ID, &p.IsPrivate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending message: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending messages: %w", err)
	}

	return pending, nil
}

// cursorParam converts an optional pagination cursor into a nullable SQL parameter.
func cursorParam(before *time.Time) pgtype.Timestamptz {
	if before == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *before, Valid: true}
}
