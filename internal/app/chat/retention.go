/*
Package chat contains the real-time messaging core.

This file defines the RetentionScheduler, which arms a one-shot deletion timer for
every persisted message. Timers live in memory only; on startup the scheduler
recomputes pending deletions from each stored message's creation time, so a restart
does not silently retain messages past their configured window.
*/
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campuschat/internal/app/store"
	"campuschat/internal/pkg/logx"
)

// deleteTimeout bounds the storage call made when a timer fires.
const deleteTimeout = 10 * time.Second

// RetentionStore is the slice of message persistence the scheduler needs.
type RetentionStore interface {
	Delete(ctx context.Context, id uuid.UUID) error
	ListPending(ctx context.Context) ([]store.PendingMessage, error)
}

// RetentionScheduler deletes persisted messages after their configured delay.
type RetentionScheduler struct {
	messages RetentionStore

	// mu guards timers.
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer

	logger zerolog.Logger
}

// NewRetentionScheduler constructs a scheduler with no armed timers.
func NewRetentionScheduler(messages RetentionStore) *RetentionScheduler {
	return &RetentionScheduler{
		messages: messages,
		timers:   make(map[uuid.UUID]*time.Timer),
		logger:   logx.Logger().With().Str("component", "RetentionScheduler").Logger(),
	}
}

// Schedule arms a one-shot deletion timer for the message. Scheduling an id that
// already has a timer replaces it. A non-positive delay deletes immediately.
func (s *RetentionScheduler) Schedule(messageID uuid.UUID, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[messageID]; ok {
		existing.Stop()
	}

	s.timers[messageID] = time.AfterFunc(delay, func() {
		s.fire(messageID)
	})
}

// Cancel disarms the timer for a message, if one is pending. Unused by current
// behavior (there is no unsend), kept as the hook for it.
func (s *RetentionScheduler) Cancel(messageID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[messageID]; ok {
		timer.Stop()
		delete(s.timers, messageID)
	}
}

// Pending reports the number of armed timers.
func (s *RetentionScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.timers)
}

// fire deletes the message when its timer expires. The message may already be
// gone; storage failures are logged and swallowed, never retried.
func (s *RetentionScheduler) fire(messageID uuid.UUID) {
	s.mu.Lock()
	delete(s.timers, messageID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	if err := s.messages.Delete(ctx, messageID); err != nil {
		s.logger.Warn().Err(err).Str("message_id", messageID.String()).Msg("Retention deletion failed.")
		return
	}

	s.logger.Debug().Str("message_id", messageID.String()).Msg("Message deleted by retention.")
}

// ResumePending re-arms deletion timers for every stored message from its creation
// time and the current per-channel retention hours. Messages already past their
// window are deleted immediately.
func (s *RetentionScheduler) ResumePending(ctx context.Context, groupHours, privateHours int) error {
	pending, err := s.messages.ListPending(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, p := range pending {
		hours := groupHours
		if p.IsPrivate {
			hours = privateHours
		}

		deadline := p.CreatedAt.Add(retentionDelay(hours))
		s.Schedule(p.ID, deadline.Sub(now))
	}

	s.logger.Info().Int("count", len(pending)).Msg("Retention timers recomputed from storage.")
	return nil
}

// Stop disarms every pending timer. Used during shutdown; deletions not yet fired
// are recomputed on the next startup.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
