package domain

import "errors"

var (
	// Credential verification failures. Always fatal to the connection
	// attempt, never retried.
	ErrTokenMissing = errors.New("credential missing")
	ErrTokenInvalid = errors.New("credential invalid")
	ErrUnknownUser  = errors.New("credential resolves to no stored user")

	// ErrStoreUnavailable marks a durable-store failure. Fatal to the single
	// operation, not to the session.
	ErrStoreUnavailable = errors.New("message store unavailable")

	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidMessageKind = errors.New("message payload does not match kind")
	ErrEmptyMessage       = errors.New("empty message payload")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrResetTokenUsed     = errors.New("reset token already used")
)
