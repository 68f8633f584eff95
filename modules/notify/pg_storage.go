package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifyhub/pkg/pg"
)

// PGStorage implements Storage and Directory on PostgreSQL.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage wraps a connection pool. The schema ships in the
// migrations directory.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

func (s *PGStorage) MemberByEmail(ctx context.Context, email string) (Member, error) {
	var m Member
	err := s.pool.QueryRow(ctx, `
		SELECT m.id, m.email, m.name, r.id, r.name
		FROM members m
		JOIN roles r ON r.id = m.role_id
		WHERE lower(m.email) = lower($1)`,
		email,
	).Scan(&m.ID, &m.Email, &m.Name, &m.Role.ID, &m.Role.Name)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Member{}, fmt.Errorf("%w: %s", ErrMemberNotFound, email)
		}
		return Member{}, fmt.Errorf("query member by email: %w", err)
	}
	return m, nil
}

func (s *PGStorage) MembersByRole(ctx context.Context, role Role) ([]Member, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.email, m.name, r.id, r.name
		FROM members m
		JOIN roles r ON r.id = m.role_id
		WHERE m.role_id = $1
		ORDER BY m.email`,
		role.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query members by role: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.Role.ID, &m.Role.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *PGStorage) RoleByName(ctx context.Context, name string) (Role, error) {
	var r Role
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM roles WHERE lower(name) = lower($1)`,
		name,
	).Scan(&r.ID, &r.Name)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Role{}, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
		}
		return Role{}, fmt.Errorf("query role by name: %w", err)
	}
	return r, nil
}

func (s *PGStorage) SaveNotification(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, member_id, role_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.MemberID, n.RoleID, n.Content, n.Read, n.CreatedAt,
	)
	if err != nil {
		return Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

func (s *PGStorage) CountUnread(ctx context.Context, member Member) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE member_id = $1 AND is_read = false`,
		member.ID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *PGStorage) FindUnread(ctx context.Context, member Member) ([]Notification, error) {
	return s.findByMember(ctx, member, true)
}

func (s *PGStorage) FindAll(ctx context.Context, member Member) ([]Notification, error) {
	return s.findByMember(ctx, member, false)
}

func (s *PGStorage) findByMember(ctx context.Context, member Member, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT n.id, n.member_id, m.email, n.role_id, r.name, n.content, n.is_read, n.created_at
		FROM notifications n
		JOIN members m ON m.id = n.member_id
		JOIN roles r ON r.id = n.role_id
		WHERE n.member_id = $1`
	if unreadOnly {
		query += ` AND n.is_read = false`
	}
	query += ` ORDER BY n.created_at, n.id`

	rows, err := s.pool.Query(ctx, query, member.ID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.MemberID, &n.MemberEmail, &n.RoleID, &n.RoleName, &n.Content, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PGStorage) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notify: notification %s not found", id)
	}
	return nil
}
