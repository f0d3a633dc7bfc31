package chat

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"campuschat/internal/app/user"
)

// newTestUser builds an active user for a faculty.
func newTestUser(name, faculty string) user.User {
	return user.User{
		ID:       uuid.New(),
		FullName: name,
		Email:    name + "@campus.example",
		Faculty:  faculty,
		Degree:   "Bachelor",
		Course:   2,
		IsActive: true,
	}
}

// newTestClient builds a client without a transport; frames land in its send
// queue where tests can inspect them.
func newTestClient(hub *Hub, service *Service, u user.User) *Client {
	return NewClient(hub, service, nil, u)
}

// receivedEvents drains the client's send queue and decodes the envelopes.
func receivedEvents(t *testing.T, c *Client) []Envelope {
	t.Helper()

	events := []Envelope{}
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return events
			}
			var envelope Envelope
			require.NoError(t, json.Unmarshal(frame, &envelope))
			events = append(events, envelope)
		default:
			return events
		}
	}
}

// eventTypes projects the drained envelopes down to their types.
func eventTypes(events []Envelope) []EventType {
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}
