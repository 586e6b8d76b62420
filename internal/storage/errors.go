package storage

import "errors"

var (
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")

	// ErrUnsupportedProvider is returned when the configured provider name is unknown.
	ErrUnsupportedProvider = errors.New("unsupported storage provider")
	// ErrMisconfiguredProvider is returned when a provider lacks required settings.
	ErrMisconfiguredProvider = errors.New("misconfigured storage provider")
)
