package notify

import (
	"context"

	"github.com/google/uuid"
)

// Storage persists notification records. FindAll returns records in
// creation order so clients can render history chronologically.
type Storage interface {
	SaveNotification(ctx context.Context, n Notification) (Notification, error)
	CountUnread(ctx context.Context, member Member) (int, error)
	FindUnread(ctx context.Context, member Member) ([]Notification, error)
	FindAll(ctx context.Context, member Member) ([]Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// Directory resolves members and roles. Lookups return ErrMemberNotFound
// or ErrRoleNotFound for unknown keys.
type Directory interface {
	MemberByEmail(ctx context.Context, email string) (Member, error)
	MembersByRole(ctx context.Context, role Role) ([]Member, error)
	RoleByName(ctx context.Context, name string) (Role, error)
}
