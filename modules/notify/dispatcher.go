package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyhub/pkg/htmltext"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/pubsub"
	"github.com/dmitrymomot/notifyhub/pkg/sessiontrack"
)

// AdminRoleName is the role resolved for admin-targeted email requests.
// The lookup deliberately ignores any role name carried by the request;
// see Service.MembersForRole.
const AdminRoleName = "ROLE_ADMIN"

const defaultSummaryLength = 120

// Service is the notification dispatch engine. It decides read state from
// the owner's live session count, persists the record, and broadcasts to
// the owner's per-purpose channels. It also fronts the read side of the
// store for the HTTP surface.
type Service struct {
	store      Storage
	directory  Directory
	registry   *sessiontrack.Registry
	publisher  pubsub.Publisher
	log        *slog.Logger
	summaryLen int
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger supplies a structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithSummaryLength bounds the summary preview published alongside new
// notifications.
func WithSummaryLength(n int) ServiceOption {
	if n <= 0 {
		panic("WithSummaryLength: length must be > 0")
	}
	return func(s *Service) { s.summaryLen = n }
}

// NewService wires the dispatch engine to its collaborators.
func NewService(store Storage, directory Directory, registry *sessiontrack.Registry, publisher pubsub.Publisher, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		directory:  directory,
		registry:   registry,
		publisher:  publisher,
		summaryLen: defaultSummaryLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Dispatch persists a notification for owner and broadcasts it to the
// owner's live sessions.
//
// The session count is read fresh for each call and drives the read-state
// heuristic: two or more live sessions mean the owner is treated as
// actively viewing the notification surface, so the record starts read
// and no unread-count or summary update is pushed. With exactly one
// session the record starts unread and three messages go out: the fresh
// unread count, a short summary, and the full content. With no sessions
// nothing is published; the record waits in history.
//
// Persistence failures propagate to the caller. Broadcast failures are
// logged and swallowed per destination, after the record is already
// durable.
func (s *Service) Dispatch(ctx context.Context, owner Member, role Role, content string) error {
	n := s.registry.CountSessionsFor(owner.Email)
	isRead := n >= 2

	notification := Notification{
		ID:          uuid.New(),
		MemberID:    owner.ID,
		MemberEmail: owner.Email,
		RoleID:      role.ID,
		RoleName:    role.Name,
		Content:     content,
		Read:        isRead,
		CreatedAt:   time.Now().UTC(),
	}

	saved, err := s.store.SaveNotification(ctx, notification)
	if err != nil {
		return fmt.Errorf("save notification for %s: %w", owner.Email, err)
	}

	if n == 0 {
		return nil
	}

	if n < 2 {
		if count, err := s.store.CountUnread(ctx, owner); err != nil {
			// The record is durable; a failed count read only costs the
			// live badge update.
			s.log.ErrorContext(ctx, "failed to read unread count for broadcast",
				logger.UserID(owner.Email), logger.Error(err))
		} else {
			s.publish(ctx, DestinationUnreadCount(owner.Email), count)
		}
		s.publish(ctx, DestinationSummary(owner.Email), htmltext.Summarize(content, s.summaryLen))
	}

	s.publish(ctx, DestinationFull(owner.Email), saved)

	return nil
}

// publish sends to one destination, logging and swallowing failures so
// sibling destinations still get their messages.
func (s *Service) publish(ctx context.Context, destination string, payload any) {
	if err := s.publisher.Publish(ctx, destination, payload); err != nil {
		s.log.ErrorContext(ctx, "broadcast publish failed",
			logger.Destination(destination), logger.Error(err))
	}
}

// MemberByEmail resolves a member by email address.
func (s *Service) MemberByEmail(ctx context.Context, email string) (Member, error) {
	return s.directory.MemberByEmail(ctx, email)
}

// MembersForRole returns the members the given role name resolves to.
// The lookup is pinned to AdminRoleName regardless of the argument,
// preserving long-standing behavior the HTTP surface and email consumers
// rely on.
func (s *Service) MembersForRole(ctx context.Context, _ string) (Role, []Member, error) {
	role, err := s.directory.RoleByName(ctx, AdminRoleName)
	if err != nil {
		return Role{}, nil, err
	}
	members, err := s.directory.MembersByRole(ctx, role)
	if err != nil {
		return Role{}, nil, err
	}
	return role, members, nil
}

// UnreadCount returns the number of unread notifications for the member
// with the given email.
func (s *Service) UnreadCount(ctx context.Context, email string) (int, error) {
	member, err := s.directory.MemberByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	return s.store.CountUnread(ctx, member)
}

// MarkAllRead flips every unread notification for the member to read.
// It is idempotent: an empty unread set is not an error.
func (s *Service) MarkAllRead(ctx context.Context, email string) error {
	member, err := s.directory.MemberByEmail(ctx, email)
	if err != nil {
		return err
	}
	unread, err := s.store.FindUnread(ctx, member)
	if err != nil {
		return err
	}
	for _, n := range unread {
		if err := s.store.MarkRead(ctx, n.ID); err != nil {
			return fmt.Errorf("mark notification %s read: %w", n.ID, err)
		}
	}
	return nil
}

// History returns all notifications for the member in creation order.
func (s *Service) History(ctx context.Context, email string) ([]Notification, error) {
	member, err := s.directory.MemberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.store.FindAll(ctx, member)
}
