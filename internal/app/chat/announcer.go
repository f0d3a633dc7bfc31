/*
Package chat contains the real-time messaging core.

This file defines the Announcer, the periodic task pushing moderation settings
(daily topic and rules) to every live connection.
*/
package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"campuschat/internal/pkg/logx"
)

// Announcer broadcasts the current settings to all connections on a fixed period.
type Announcer struct {
	hub      *Hub
	settings SettingsSource
	interval time.Duration

	logger zerolog.Logger
}

// NewAnnouncer constructs an announcer with the given broadcast period.
func NewAnnouncer(hub *Hub, settings SettingsSource, interval time.Duration) *Announcer {
	return &Announcer{
		hub:      hub,
		settings: settings,
		interval: interval,
		logger:   logx.Logger().With().Str("component", "Announcer").Logger(),
	}
}

// Run broadcasts on every tick until the context is cancelled. A failed settings
// read skips the tick; the loop itself never terminates on error.
func (a *Announcer) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info().Dur("interval", a.interval).Msg("Settings broadcast loop started.")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("Settings broadcast loop stopped.")
			return

		case <-ticker.C:
			a.broadcastOnce(ctx)
		}
	}
}

// broadcastOnce performs a single settings read and push.
func (a *Announcer) broadcastOnce(ctx context.Context) {
	readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	settings, err := a.settings.Get(readCtx)
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to read settings, skipping broadcast tick.")
		return
	}

	frame, err := marshalEvent(TypeSettingsUpdate, SettingsUpdatePayload{
		DailyTopic: settings.DailyTopic,
		Rules:      settings.Rules,
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to marshal settings update.")
		return
	}

	a.hub.BroadcastAll(frame)
}
