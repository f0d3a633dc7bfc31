package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings is the moderation configuration singleton: daily topic and rules pushed to
// connections, the denylist applied to outgoing text, and the per-channel retention
// delays after which persisted messages are deleted.
type Settings struct {
	DailyTopic               string `json:"dailyTopic"`
	Rules                    string `json:"rules"`
	FilteredWords            string `json:"filteredWords"`
	GroupChatDeletionHours   int    `json:"groupChatDeletionHours"`
	PrivateChatDeletionHours int    `json:"privateChatDeletionHours"`
}

// SettingsRepo reads the settings singleton; writes happen through the external
// admin surface.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

// NewSettings constructs the settings repository.
func NewSettings(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get returns the current settings, lazily creating the row with schema defaults
// the first time it is read.
func (s *SettingsRepo) Get(ctx context.Context) (Settings, error) {
	const q = `
		INSERT INTO settings (id) VALUES (1)
		ON CONFLICT (id) DO UPDATE SET id = settings.id
		RETURNING daily_topic, rules, filtered_words,
		          group_chat_deletion_hours, private_chat_deletion_hours`

	settings := Settings{}
	err := s.pool.QueryRow(ctx, q).Scan(
		&settings.DailyTopic,
		&settings.Rules,
		&settings.FilteredWords,
		&settings.GroupChatDeletionHours,
		&settings.PrivateChatDeletionHours,
	)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	return settings, nil
}
