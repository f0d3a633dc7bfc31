package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"campuschat/internal/pkg/errs"
)

func newTestService(fake *fakeStore) (*Service, *Hub, *RetentionScheduler) {
	hub := NewHub()
	retention := NewRetentionScheduler(fake)
	return NewService(hub, fake, fake, fake, fake, retention), hub, retention
}

func TestService_SendGroup_FanOutSkipsBlockedMembers(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	bob := newTestUser("Bob", "Physics")
	carol := newTestUser("Carol", "Physics")

	aliceClient := newTestClient(hub, service, alice)
	bobClient := newTestClient(hub, service, bob)
	carolClient := newTestClient(hub, service, carol)
	hub.Register(aliceClient)
	hub.Register(bobClient)
	hub.Register(carolClient)

	req.NoError(fake.Block(context.Background(), alice.ID, bob.ID))

	cerr := service.SendGroup(context.Background(), alice, "Physics", "hello room")
	req.Nil(cerr)

	// The sender and the unblocked member receive the message; the blocked
	// member does not, yet the row is persisted for everyone else's history.
	req.Equal([]EventType{TypeNewMessage}, eventTypes(receivedEvents(t, aliceClient)))
	req.Empty(receivedEvents(t, bobClient))
	req.Equal([]EventType{TypeNewMessage}, eventTypes(receivedEvents(t, carolClient)))

	req.Equal(1, fake.messageCount())
	stored, ok := fake.firstMessage()
	req.True(ok)
	req.Equal(alice.ID, stored.SenderID)
	req.Equal("Physics", stored.RoomID)
	req.False(stored.IsPrivate)

	req.Equal(1, retention.Pending())
	retention.Stop()
}

func TestService_SendGroup_BlockIsSymmetric(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	bob := newTestUser("Bob", "Physics")

	aliceClient := newTestClient(hub, service, alice)
	bobClient := newTestClient(hub, service, bob)
	hub.Register(aliceClient)
	hub.Register(bobClient)

	// Bob blocked Alice; Alice's messages must still not reach Bob.
	req.NoError(fake.Block(context.Background(), bob.ID, alice.ID))

	cerr := service.SendGroup(context.Background(), alice, "Physics", "hi")
	req.Nil(cerr)

	req.Equal([]EventType{TypeNewMessage}, eventTypes(receivedEvents(t, aliceClient)))
	req.Empty(receivedEvents(t, bobClient))
	retention.Stop()
}

func TestService_SendGroup_FiltersContentBeforePersist(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	fake.settings.FilteredWords = "bad,worse"
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	aliceClient := newTestClient(hub, service, alice)
	hub.Register(aliceClient)

	cerr := service.SendGroup(context.Background(), alice, "Physics", "a bad, WORSE day")
	req.Nil(cerr)

	stored, ok := fake.firstMessage()
	req.True(ok)
	req.Equal("a ***, ***** day", stored.Content)

	events := receivedEvents(t, aliceClient)
	req.Len(events, 1)
	req.Contains(string(events[0].Payload), "a ***, ***** day")
	retention.Stop()
}

func TestService_SendGroup_PersistFailureAbortsDelivery(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	fake.createErr = errors.New("connection refused")
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	aliceClient := newTestClient(hub, service, alice)
	hub.Register(aliceClient)

	cerr := service.SendGroup(context.Background(), alice, "Physics", "hello")
	req.NotNil(cerr)
	req.Equal(errs.ErrStorageUnavailable, cerr.Code)

	req.Empty(receivedEvents(t, aliceClient))
	req.Equal(0, retention.Pending())
}

func TestService_SendGroup_FanOutFailureKeepsRetentionArmed(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	fake.peersErr = errors.New("connection refused")
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	aliceClient := newTestClient(hub, service, alice)
	hub.Register(aliceClient)

	cerr := service.SendGroup(context.Background(), alice, "Physics", "hello")
	req.NotNil(cerr)
	req.Equal(errs.ErrStorageUnavailable, cerr.Code)

	// The row was persisted before the fan-out failed, so its deletion timer
	// must already be armed; otherwise it outlives its window until the next
	// restart sweep.
	req.Equal(1, fake.messageCount())
	req.Equal(1, retention.Pending())
	req.Empty(receivedEvents(t, aliceClient))
	retention.Stop()
}

func TestService_SendDirect_EchoAndDelivery(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	bob := newTestUser("Bob", "Chemistry")

	aliceClient := newTestClient(hub, service, alice)
	bobClient := newTestClient(hub, service, bob)
	hub.Register(aliceClient)
	hub.Register(bobClient)

	cerr := service.SendDirect(context.Background(), alice, bob.ID, "hey")
	req.Nil(cerr)

	req.Equal([]EventType{TypeNewPrivateMessage}, eventTypes(receivedEvents(t, aliceClient)))
	req.Equal([]EventType{TypeNewPrivateMessage}, eventTypes(receivedEvents(t, bobClient)))

	stored, ok := fake.firstMessage()
	req.True(ok)
	req.True(stored.IsPrivate)
	req.Equal(alice.ID, stored.SenderID)
	req.NotNil(stored.ReceiverID)
	req.Equal(bob.ID, *stored.ReceiverID)

	req.Equal(1, retention.Pending())
	retention.Stop()
}

func TestService_SendDirect_OfflineReceiverStillPersisted(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	bob := newTestUser("Bob", "Chemistry")

	aliceClient := newTestClient(hub, service, alice)
	hub.Register(aliceClient)

	cerr := service.SendDirect(context.Background(), alice, bob.ID, "see you later")
	req.Nil(cerr)

	// Sender gets the echo; the message waits in storage for the receiver.
	req.Equal([]EventType{TypeNewPrivateMessage}, eventTypes(receivedEvents(t, aliceClient)))
	req.Equal(1, fake.messageCount())
	retention.Stop()
}

func TestService_SendDirect_BlockedPairRejectedBeforePersist(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	service, hub, retention := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	bob := newTestUser("Bob", "Chemistry")

	aliceClient := newTestClient(hub, service, alice)
	bobClient := newTestClient(hub, service, bob)
	hub.Register(aliceClient)
	hub.Register(bobClient)

	// Direction does not matter: Bob blocked Alice.
	req.NoError(fake.Block(context.Background(), bob.ID, alice.ID))

	cerr := service.SendDirect(context.Background(), alice, bob.ID, "let me in")
	req.NotNil(cerr)
	req.Equal(errs.ErrUserBlocked, cerr.Code)

	req.Equal(0, fake.messageCount())
	req.Equal(0, retention.Pending())
	req.Empty(receivedEvents(t, aliceClient))
	req.Empty(receivedEvents(t, bobClient))
}

func TestService_BlockUnblockIdempotent(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	service, _, _ := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	bob := newTestUser("Bob", "Chemistry")

	req.Nil(service.Block(context.Background(), alice.ID, bob.ID))
	req.Nil(service.Block(context.Background(), alice.ID, bob.ID))

	blocked, err := fake.IsBlocked(context.Background(), alice.ID, bob.ID)
	req.NoError(err)
	req.True(blocked)

	req.Nil(service.Unblock(context.Background(), alice.ID, bob.ID))
	// Unblocking an already unblocked pair succeeds.
	req.Nil(service.Unblock(context.Background(), alice.ID, bob.ID))

	blocked, err = fake.IsBlocked(context.Background(), alice.ID, bob.ID)
	req.NoError(err)
	req.False(blocked)
}

func TestService_ReportRecordsPair(t *testing.T) {
	req := require.New(t)
	fake := newFakeStore()
	service, _, _ := newTestService(fake)

	alice := newTestUser("Alice", "Physics")
	bob := newTestUser("Bob", "Chemistry")

	req.Nil(service.Report(context.Background(), alice.ID, bob.ID))

	req.Len(fake.reports, 1)
	req.Equal(alice.ID, fake.reports[0][0])
	req.Equal(bob.ID, fake.reports[0][1])
}
