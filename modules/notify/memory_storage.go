package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage and Directory for tests and local
// runs. Notifications keep insertion order per member so history reads
// back chronologically.
type MemoryStorage struct {
	mu            sync.RWMutex
	roles         map[string]Role            // keyed by lowercase role name
	members       map[string]Member          // keyed by lowercase email
	notifications map[string][]*Notification // keyed by lowercase member email
	byID          map[uuid.UUID]*Notification
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		roles:         make(map[string]Role),
		members:       make(map[string]Member),
		notifications: make(map[string][]*Notification),
		byID:          make(map[uuid.UUID]*Notification),
	}
}

// AddRole registers a role, assigning an ID when absent.
func (s *MemoryStorage) AddRole(role Role) Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	s.roles[strings.ToLower(role.Name)] = role
	return role
}

// AddMember registers a member, assigning an ID when absent. The member's
// role must already exist.
func (s *MemoryStorage) AddMember(member Member) (Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[strings.ToLower(member.Role.Name)]
	if !ok {
		return Member{}, fmt.Errorf("%w: %s", ErrRoleNotFound, member.Role.Name)
	}
	member.Role = role
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	s.members[strings.ToLower(member.Email)] = member
	return member, nil
}

func (s *MemoryStorage) MemberByEmail(_ context.Context, email string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[strings.ToLower(email)]
	if !ok {
		return Member{}, fmt.Errorf("%w: %s", ErrMemberNotFound, email)
	}
	return member, nil
}

func (s *MemoryStorage) MembersByRole(_ context.Context, role Role) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []Member
	for _, m := range s.members {
		if m.Role.ID == role.ID {
			members = append(members, m)
		}
	}
	return members, nil
}

func (s *MemoryStorage) RoleByName(_ context.Context, name string) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[strings.ToLower(name)]
	if !ok {
		return Role{}, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	return role, nil
}

func (s *MemoryStorage) SaveNotification(_ context.Context, n Notification) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	stored := n
	key := strings.ToLower(n.MemberEmail)
	s.notifications[key] = append(s.notifications[key], &stored)
	s.byID[stored.ID] = &stored
	return stored, nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, member Member) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for _, n := range s.notifications[strings.ToLower(member.Email)] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) FindUnread(_ context.Context, member Member) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Notification
	for _, n := range s.notifications[strings.ToLower(member.Email)] {
		if !n.Read {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *MemoryStorage) FindAll(_ context.Context, member Member) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.notifications[strings.ToLower(member.Email)]
	out := make([]Notification, 0, len(stored))
	for _, n := range stored {
		out = append(out, *n)
	}
	return out, nil
}

func (s *MemoryStorage) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("notify: notification %s not found", id)
	}
	n.Read = true
	return nil
}
