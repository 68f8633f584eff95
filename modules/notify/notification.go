package notify

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named member group. Admin-targeted email requests resolve to
// the role named AdminRoleName.
type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Member is a registered recipient of notifications, identified by email.
type Member struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
}

// Notification is the durable record of a dispatched notification. Read is
// the only field that changes after creation; it flips false to true via
// MarkAllRead, or starts true when the owner was actively viewing at
// dispatch time.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	MemberID    uuid.UUID `json:"member_id"`
	MemberEmail string    `json:"member_email"`
	RoleID      uuid.UUID `json:"role_id"`
	RoleName    string    `json:"role_name"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Per-user logical channel names on the pub/sub transport. Live clients
// subscribe to all three on connect.
func DestinationFull(email string) string {
	return "/notification/" + email
}

func DestinationUnreadCount(email string) string {
	return "/notification/unread-notification-count-updates/" + email
}

func DestinationSummary(email string) string {
	return "/notification/notification-message/" + email
}
