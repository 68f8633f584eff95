package notify

import "errors"

var (
	ErrMemberNotFound      = errors.New("notify: member not found")
	ErrRoleNotFound        = errors.New("notify: role not found")
	ErrUnknownRoleType     = errors.New("notify: unknown role type")
	ErrInvalidEmailRequest = errors.New("notify: invalid email request")
	ErrMissingIdentity     = errors.New("notify: missing user identity")
)
