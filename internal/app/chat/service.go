/*
Package chat contains the real-time messaging core.

This file defines the Service, which carries a message from an inbound event to its
recipients: content filtering, persistence, block-aware fan-out, and scheduling of
the retention deletion. It also hosts the block/unblock/report operations.
*/
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campuschat/internal/app/store"
	"campuschat/internal/app/user"
	"campuschat/internal/pkg/errs"
	"campuschat/internal/pkg/logx"
)

// MessageStore is the persistence surface the service depends on.
type MessageStore interface {
	CreateGroup(ctx context.Context, roomID string, senderID uuid.UUID, content string) (store.Message, error)
	CreateDirect(ctx context.Context, senderID, receiverID uuid.UUID, content string) (store.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPending(ctx context.Context) ([]store.PendingMessage, error)
}

// BlockStore answers and mutates the block relation between user pairs.
type BlockStore interface {
	IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error)
	BlockedPeers(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
	Block(ctx context.Context, blockerID, blockedID uuid.UUID) error
	Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error
}

// SettingsSource reads the current moderation settings.
type SettingsSource interface {
	Get(ctx context.Context) (store.Settings, error)
}

// ReportSink records a report against a user.
type ReportSink interface {
	Report(ctx context.Context, reporterID, reportedID uuid.UUID) error
}

// Service wires the messaging pipeline together.
type Service struct {
	hub       *Hub
	messages  MessageStore
	blocks    BlockStore
	settings  SettingsSource
	reports   ReportSink
	retention *RetentionScheduler

	logger zerolog.Logger
}

// NewService constructs the messaging service.
func NewService(hub *Hub, messages MessageStore, blocks BlockStore, settings SettingsSource, reports ReportSink, retention *RetentionScheduler) *Service {
	return &Service{
		hub:       hub,
		messages:  messages,
		blocks:    blocks,
		settings:  settings,
		reports:   reports,
		retention: retention,
		logger:    logx.Logger().With().Str("component", "ChatService").Logger(),
	}
}

// SendGroup delivers a message to a room: filter, persist, snapshot the live
// membership, fan out to every member not blocked relative to the sender, and
// schedule the retention deletion. Filter and persistence failures abort the send
// and surface to the sender only; a failed delivery to one recipient never aborts
// delivery to the rest.
func (s *Service) SendGroup(ctx context.Context, sender user.User, roomID, content string) *errs.CustomError {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load settings for group send")
		return errs.NewError(errs.ErrStorageUnavailable)
	}

	filtered := Redact(content, ParseDenylist(settings.FilteredWords))

	msg, err := s.messages.CreateGroup(ctx, roomID, sender.ID, filtered)
	if err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to persist group message")
		return errs.NewError(errs.ErrStorageUnavailable)
	}

	// Armed as soon as the row exists; a fan-out failure below must not leave
	// the message without a deletion timer.
	s.retention.Schedule(msg.ID, retentionDelay(settings.GroupChatDeletionHours))

	frame, err := marshalEvent(TypeNewMessage, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("message_id", msg.ID.String()).Msg("Failed to marshal group message")
		return errs.NewError(errs.ErrUnknown)
	}

	// Blocked pairs are resolved once per send, not once per recipient.
	restricted, err := s.blocks.BlockedPeers(ctx, sender.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("message_id", msg.ID.String()).Msg("Failed to resolve blocked peers, fan-out skipped")
		return errs.NewError(errs.ErrStorageUnavailable)
	}

	for _, member := range s.hub.RoomSnapshot(roomID) {
		if _, blocked := restricted[member.user.ID]; blocked {
			continue
		}

		if !member.enqueue(frame) {
			s.logger.Warn().
				Str("message_id", msg.ID.String()).
				Str("user_id", member.user.ID.String()).
				Msg("Recipient send queue full, message dropped for this recipient.")
		}
	}

	return nil
}

// SendDirect delivers a private message. A blocked pair is rejected before any
// persistence happens. The sender always receives an echo; the receiver only when
// online. An offline receiver finds the message in history later.
func (s *Service) SendDirect(ctx context.Context, sender user.User, receiverID uuid.UUID, content string) *errs.CustomError {
	blocked, err := s.blocks.IsBlocked(ctx, sender.ID, receiverID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check block relation for direct send")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	if blocked {
		return errs.NewError(errs.ErrUserBlocked)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load settings for direct send")
		return errs.NewError(errs.ErrStorageUnavailable)
	}

	filtered := Redact(content, ParseDenylist(settings.FilteredWords))

	msg, err := s.messages.CreateDirect(ctx, sender.ID, receiverID, filtered)
	if err != nil {
		s.logger.Error().Err(err).Str("receiver_id", receiverID.String()).Msg("Failed to persist direct message")
		return errs.NewError(errs.ErrStorageUnavailable)
	}

	s.retention.Schedule(msg.ID, retentionDelay(settings.PrivateChatDeletionHours))

	frame, err := marshalEvent(TypeNewPrivateMessage, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("message_id", msg.ID.String()).Msg("Failed to marshal direct message")
		return errs.NewError(errs.ErrUnknown)
	}

	if senderClient, ok := s.hub.Lookup(sender.ID); ok {
		if !senderClient.enqueue(frame) {
			s.logger.Warn().Str("message_id", msg.ID.String()).Msg("Sender send queue full, echo dropped.")
		}
	}

	if receiverClient, ok := s.hub.Lookup(receiverID); ok {
		if !receiverClient.enqueue(frame) {
			s.logger.Warn().
				Str("message_id", msg.ID.String()).
				Str("receiver_id", receiverID.String()).
				Msg("Receiver send queue full, message dropped for delivery.")
		}
	}

	return nil
}

// Block records a block relation from blocker to target. Idempotent.
func (s *Service) Block(ctx context.Context, blockerID, targetID uuid.UUID) *errs.CustomError {
	if err := s.blocks.Block(ctx, blockerID, targetID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to record block")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	return nil
}

// Unblock removes the blocker's relation to the target. Unblocking a user who was
// never blocked succeeds.
func (s *Service) Unblock(ctx context.Context, blockerID, targetID uuid.UUID) *errs.CustomError {
	if err := s.blocks.Unblock(ctx, blockerID, targetID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to remove block")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	return nil
}

// Report records a report against the target and increments their report count.
func (s *Service) Report(ctx context.Context, reporterID, targetID uuid.UUID) *errs.CustomError {
	if err := s.reports.Report(ctx, reporterID, targetID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to record report")
		return errs.NewError(errs.ErrStorageUnavailable)
	}
	return nil
}

// retentionDelay converts a configured retention in hours to a timer delay.
func retentionDelay(hours int) time.Duration {
	return time.Duration(hours) * time.Hour
}
