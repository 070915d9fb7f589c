package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories map
// driver-level failures (sql.ErrNoRows, unique violations) onto these so the
// delivery layer can translate them to HTTP statuses with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateEmail = errors.New("email already in use")

	// Credentials did not match on login. Deliberately indistinguishable
	// between unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RSVP rejections. Each precondition of Join/Leave has its own error so the
// caller can tell why the operation was refused.
var (
	ErrEventClosed   = errors.New("event has already taken place")
	ErrEventFull     = errors.New("event is at full capacity")
	ErrAlreadyJoined = errors.New("already RSVPed to this event")
	ErrNotJoined     = errors.New("not RSVPed to this event")
)
