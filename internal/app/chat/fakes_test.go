package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"campuschat/internal/app/store"
	"campuschat/internal/app/user"
)

// fakeStore is an in-memory stand-in for the persistence repositories, shared by
// the message, block, settings, and report interfaces the service depends on.
type fakeStore struct {
	mu sync.Mutex

	messages map[uuid.UUID]store.Message
	blocks   map[[2]uuid.UUID]struct{}
	reports  [][2]uuid.UUID

	settings    store.Settings
	settingsErr error
	createErr   error
	deleteErr   error
	peersErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages: make(map[uuid.UUID]store.Message),
		blocks:   make(map[[2]uuid.UUID]struct{}),
		settings: store.Settings{
			GroupChatDeletionHours:   24,
			PrivateChatDeletionHours: 24,
		},
	}
}

func (f *fakeStore) CreateGroup(_ context.Context, roomID string, senderID uuid.UUID, content string) (store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return store.Message{}, f.createErr
	}

	msg := store.Message{
		ID:        uuid.New(),
		Content:   content,
		RoomID:    roomID,
		SenderID:  senderID,
		CreatedAt: time.Now(),
		Sender:    user.Summary{ID: senderID},
	}
	f.messages[msg.ID] = msg
	return msg, nil
}

func (f *fakeStore) CreateDirect(_ context.Context, senderID, receiverID uuid.UUID, content string) (store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return store.Message{}, f.createErr
	}

	rcv := receiverID
	msg := store.Message{
		ID:         uuid.New(),
		Content:    content,
		IsPrivate:  true,
		SenderID:   senderID,
		ReceiverID: &rcv,
		CreatedAt:  time.Now(),
		Sender:     user.Summary{ID: senderID},
		Receiver:   &user.Summary{ID: receiverID},
	}
	f.messages[msg.ID] = msg
	return msg, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}

	delete(f.messages, id)
	return nil
}

func (f *fakeStore) ListPending(_ context.Context) ([]store.PendingMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending := []store.PendingMessage{}
	for _, msg := range f.messages {
		pending = append(pending, store.PendingMessage{
			ID:        msg.ID,
			IsPrivate: msg.IsPrivate,
			CreatedAt: msg.CreatedAt,
		})
	}
	return pending, nil
}

func (f *fakeStore) IsBlocked(_ context.Context, a, b uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, forward := f.blocks[[2]uuid.UUID{a, b}]
	_, backward := f.blocks[[2]uuid.UUID{b, a}]
	return forward || backward, nil
}

func (f *fakeStore) BlockedPeers(_ context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.peersErr != nil {
		return nil, f.peersErr
	}

	peers := make(map[uuid.UUID]struct{})
	for pair := range f.blocks {
		if pair[0] == userID {
			peers[pair[1]] = struct{}{}
		}
		if pair[1] == userID {
			peers[pair[0]] = struct{}{}
		}
	}
	return peers, nil
}

func (f *fakeStore) Block(_ context.Context, blockerID, blockedID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.blocks[[2]uuid.UUID{blockerID, blockedID}] = struct{}{}
	return nil
}

func (f *fakeStore) Unblock(_ context.Context, blockerID, blockedID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.blocks, [2]uuid.UUID{blockerID, blockedID})
	return nil
}

func (f *fakeStore) Get(_ context.Context) (store.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.settingsErr != nil {
		return store.Settings{}, f.settingsErr
	}
	return f.settings, nil
}

func (f *fakeStore) Report(_ context.Context, reporterID, reportedID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reports = append(f.reports, [2]uuid.UUID{reporterID, reportedID})
	return nil
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.messages)
}

func (f *fakeStore) firstMessage() (store.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, msg := range f.messages {
		return msg, true
	}
	return store.Message{}, false
}

func (f *fakeStore) hasMessage(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.messages[id]
	return ok
}
