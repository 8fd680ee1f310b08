package errors

import "errors"

// Domain errors for the real-time subsystem.
var (
	// Session lifecycle
	ErrSessionNotFound = errors.New("session not found")

	// Authentication
	ErrUserIDRequired = errors.New("user id is required")
	ErrRoleRequired   = errors.New("role is required")
	ErrInvalidToken   = errors.New("invalid or expired token")

	// Transport
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")

	// Upstream collaborators
	ErrSnapshotUnavailable = errors.New("snapshot source unavailable")
	ErrPredictionFailed    = errors.New("prediction backend failed")
)
