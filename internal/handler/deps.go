package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campuschat/internal/app/chat"
	"campuschat/internal/app/identity"
	"campuschat/internal/app/store"
	"campuschat/internal/configs"
)

// MessageLister is the read surface the history endpoints depend on.
type MessageLister interface {
	ListGroup(ctx context.Context, roomID string, viewerID uuid.UUID, limit int, before *time.Time) ([]store.Message, error)
	ListDirect(ctx context.Context, a, b uuid.UUID, limit int, before *time.Time) ([]store.Message, error)
	Conversations(ctx context.Context, userID uuid.UUID) ([]store.Conversation, error)
}

// BlockChecker answers whether a block relation exists between a user pair.
type BlockChecker interface {
	IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// AppDeps bundles the shared dependencies handlers need.
type AppDeps struct {
	Config   *configs.AppConfig
	Hub      *chat.Hub
	Service  *chat.Service
	Gate     *identity.Gate
	Messages MessageLister
	Blocks   BlockChecker
}
