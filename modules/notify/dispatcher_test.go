package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/modules/notify"
	"github.com/dmitrymomot/notifyhub/pkg/sessiontrack"
)

type recordedPublish struct {
	Destination string
	Payload     any
}

// capturePublisher records publishes; destinations in failOn return an error.
type capturePublisher struct {
	mu        sync.Mutex
	published []recordedPublish
	failOn    map[string]bool
}

func (p *capturePublisher) Publish(_ context.Context, dest string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn[dest] {
		return errors.New("publish failed")
	}
	p.published = append(p.published, recordedPublish{Destination: dest, Payload: payload})
	return nil
}

func (p *capturePublisher) calls() []recordedPublish {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedPublish(nil), p.published...)
}

type dispatchFixture struct {
	store     *notify.MemoryStorage
	registry  *sessiontrack.Registry
	publisher *capturePublisher
	svc       *notify.Service
	admin     notify.Member
	adminRole notify.Role
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()

	store := notify.NewMemoryStorage()
	adminRole := store.AddRole(notify.Role{Name: notify.AdminRoleName})
	store.AddRole(notify.Role{Name: "ROLE_USER"})
	admin, err := store.AddMember(notify.Member{
		Email: "a@x.com",
		Name:  "Ada",
		Role:  notify.Role{Name: notify.AdminRoleName},
	})
	require.NoError(t, err)

	registry := sessiontrack.NewRegistry()
	publisher := &capturePublisher{failOn: map[string]bool{}}
	svc := notify.NewService(store, store, registry, publisher)

	return &dispatchFixture{
		store:     store,
		registry:  registry,
		publisher: publisher,
		svc:       svc,
		admin:     admin,
		adminRole: adminRole,
	}
}

func TestDispatchZeroSessions(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Dispatch(ctx, f.admin, f.adminRole, "hello"))

	assert.Empty(t, f.publisher.calls(), "no live session means no broadcast")

	count, err := f.svc.UnreadCount(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	history, err := f.svc.History(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
	assert.False(t, history[0].Read)
}

func TestDispatchSingleSession(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()
	f.registry.Register("sess-1", "a@x.com")

	require.NoError(t, f.svc.Dispatch(ctx, f.admin, f.adminRole, "disk almost full"))

	calls := f.publisher.calls()
	require.Len(t, calls, 3, "single session gets count, summary, and full content")
	assert.Equal(t, notify.DestinationUnreadCount("a@x.com"), calls[0].Destination)
	assert.Equal(t, 1, calls[0].Payload)
	assert.Equal(t, notify.DestinationSummary("a@x.com"), calls[1].Destination)
	assert.Equal(t, "disk almost full", calls[1].Payload)
	assert.Equal(t, notify.DestinationFull("a@x.com"), calls[2].Destination)

	full, ok := calls[2].Payload.(notify.Notification)
	require.True(t, ok, "full channel carries the persisted record")
	assert.Equal(t, "disk almost full", full.Content)
	assert.False(t, full.Read)

	count, err := f.svc.UnreadCount(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDispatchMultipleSessionsPreMarksRead(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()
	f.registry.Register("sess-1", "a@x.com")
	f.registry.Register("sess-2", "a@x.com")

	require.NoError(t, f.svc.Dispatch(ctx, f.admin, f.adminRole, "hello"))

	calls := f.publisher.calls()
	require.Len(t, calls, 1, "active viewer gets only the full content")
	assert.Equal(t, notify.DestinationFull("a@x.com"), calls[0].Destination)

	count, err := f.svc.UnreadCount(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "record starts read when owner is actively viewing")

	history, err := f.svc.History(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Read)
}

func TestDispatchSummaryTruncatesHTML(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.registry.Register("sess-1", "a@x.com")

	svc := notify.NewService(f.store, f.store, f.registry, f.publisher,
		notify.WithSummaryLength(5))

	require.NoError(t, svc.Dispatch(context.Background(), f.admin, f.adminRole, "<p>abcdefghij</p>"))

	calls := f.publisher.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "abcde…", calls[1].Payload)

	full := calls[2].Payload.(notify.Notification)
	assert.Equal(t, "<p>abcdefghij</p>", full.Content, "full channel keeps raw content")
}

func TestDispatchBroadcastFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()
	f.registry.Register("sess-1", "a@x.com")
	f.publisher.failOn[notify.DestinationUnreadCount("a@x.com")] = true

	require.NoError(t, f.svc.Dispatch(ctx, f.admin, f.adminRole, "hello"))

	calls := f.publisher.calls()
	require.Len(t, calls, 2, "siblings still publish when one destination fails")
	assert.Equal(t, notify.DestinationSummary("a@x.com"), calls[0].Destination)
	assert.Equal(t, notify.DestinationFull("a@x.com"), calls[1].Destination)

	history, err := f.svc.History(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, history, 1, "record is durable regardless of broadcast faults")
}

type failingStore struct {
	notify.Storage
}

func (failingStore) SaveNotification(context.Context, notify.Notification) (notify.Notification, error) {
	return notify.Notification{}, errors.New("storage down")
}

func TestDispatchPersistenceFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	f.registry.Register("sess-1", "a@x.com")

	svc := notify.NewService(failingStore{f.store}, f.store, f.registry, f.publisher)

	err := svc.Dispatch(context.Background(), f.admin, f.adminRole, "hello")
	require.Error(t, err)
	assert.Empty(t, f.publisher.calls(), "no broadcast without a durable record")
}

func TestMarkAllReadIdempotent(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Dispatch(ctx, f.admin, f.adminRole, "one"))
	require.NoError(t, f.svc.Dispatch(ctx, f.admin, f.adminRole, "two"))

	require.NoError(t, f.svc.MarkAllRead(ctx, "a@x.com"))
	count, err := f.svc.UnreadCount(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Second pass over an empty unread set is a no-op, not an error.
	require.NoError(t, f.svc.MarkAllRead(ctx, "a@x.com"))
	count, err = f.svc.UnreadCount(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestHistoryPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		require.NoError(t, f.svc.Dispatch(ctx, f.admin, f.adminRole, c))
	}

	history, err := f.svc.History(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, len(contents))
	for i, c := range contents {
		assert.Equal(t, c, history[i].Content)
	}
}

func TestMembersForRoleIgnoresArgument(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()

	_, err := f.store.AddMember(notify.Member{
		Email: "user@x.com",
		Role:  notify.Role{Name: "ROLE_USER"},
	})
	require.NoError(t, err)

	// The lookup resolves the admin role no matter what name is passed.
	for _, name := range []string{"", "ROLE_USER", "anything"} {
		role, members, err := f.svc.MembersForRole(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, notify.AdminRoleName, role.Name)
		require.Len(t, members, 1)
		assert.Equal(t, "a@x.com", members[0].Email)
	}
}

func TestUnknownMemberReturnsNotFound(t *testing.T) {
	t.Parallel()

	f := newDispatchFixture(t)
	ctx := context.Background()

	_, err := f.svc.UnreadCount(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, notify.ErrMemberNotFound)

	_, err = f.svc.History(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, notify.ErrMemberNotFound)

	err = f.svc.MarkAllRead(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, notify.ErrMemberNotFound)
}
