package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"campuschat/internal/app/store"
	"campuschat/internal/app/user"
	"campuschat/internal/pkg/errs"
)

type fakeBlockChecker struct {
	blocked bool
	err     error
}

func (f *fakeBlockChecker) IsBlocked(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.blocked, f.err
}

// fakeMessageLister fails the test when a list query runs unexpectedly.
type fakeMessageLister struct {
	t        *testing.T
	direct   []store.Message
	forbidQ  bool
	directQs int
}

func (f *fakeMessageLister) ListGroup(context.Context, string, uuid.UUID, int, *time.Time) ([]store.Message, error) {
	return nil, nil
}

func (f *fakeMessageLister) ListDirect(context.Context, uuid.UUID, uuid.UUID, int, *time.Time) ([]store.Message, error) {
	if f.forbidQ {
		f.t.Fatal("direct history query ran for a blocked pair")
	}
	f.directQs++
	return f.direct, nil
}

func (f *fakeMessageLister) Conversations(context.Context, uuid.UUID) ([]store.Conversation, error) {
	return nil, nil
}

// historyRequest builds an authenticated request routed at the direct-history peer.
func historyRequest(viewer user.User, peerID uuid.UUID) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/messages/private/"+peerID.String(), nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userID", peerID.String())

	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, contextUserKey, viewer)
	return r.WithContext(ctx)
}

func TestHandleDirectHistory_BlockedPairForbidden(t *testing.T) {
	req := require.New(t)

	viewer := user.User{ID: uuid.New(), FullName: "Bob", Faculty: "Chemistry", IsActive: true}
	peerID := uuid.New()

	deps := &AppDeps{
		Blocks:   &fakeBlockChecker{blocked: true},
		Messages: &fakeMessageLister{t: t, forbidQ: true},
	}

	rec := httptest.NewRecorder()
	HandleDirectHistory(deps)(rec, historyRequest(viewer, peerID))

	req.Equal(http.StatusForbidden, rec.Code)
	req.Equal(errs.ErrUserBlocked, decodeEnvelope(t, rec).Code)
}

func TestHandleDirectHistory_UnblockedPairListed(t *testing.T) {
	req := require.New(t)

	viewer := user.User{ID: uuid.New(), FullName: "Bob", Faculty: "Chemistry", IsActive: true}
	peerID := uuid.New()

	lister := &fakeMessageLister{t: t, direct: []store.Message{{ID: uuid.New(), Content: "hey", IsPrivate: true}}}
	deps := &AppDeps{
		Blocks:   &fakeBlockChecker{},
		Messages: lister,
	}

	rec := httptest.NewRecorder()
	HandleDirectHistory(deps)(rec, historyRequest(viewer, peerID))

	req.Equal(http.StatusOK, rec.Code)
	req.Equal(1, lister.directQs)
	req.Equal(0, decodeEnvelope(t, rec).Code)
}

func TestHandleDirectHistory_InvalidPeerID(t *testing.T) {
	req := require.New(t)

	viewer := user.User{ID: uuid.New(), FullName: "Bob", Faculty: "Chemistry", IsActive: true}
	deps := &AppDeps{
		Blocks:   &fakeBlockChecker{},
		Messages: &fakeMessageLister{t: t},
	}

	r := httptest.NewRequest(http.MethodGet, "/api/messages/private/not-a-uuid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userID", "not-a-uuid")
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, contextUserKey, viewer)

	rec := httptest.NewRecorder()
	HandleDirectHistory(deps)(rec, r.WithContext(ctx))

	req.Equal(http.StatusBadRequest, rec.Code)
	req.Equal(errs.ErrInvalidParams, decodeEnvelope(t, rec).Code)
}
