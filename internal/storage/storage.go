package storage

import (
	"context"
	"strings"
	"time"
)

// Package storage issues presigned URLs and answers existence/size queries
// against a remote object store. Object bytes never pass through this service:
// clients transfer them directly using the presigned URLs.

// ObjectMetadata describes an object as reported by the store.
// SizeBytes is only set when Exists is true.
type ObjectMetadata struct {
	Exists    bool
	SizeBytes *int64
}

// Storage is the provider-neutral object storage capability.
// Implementations are safe for concurrent use by multiple goroutines.
type Storage interface {
	// PresignUpload returns a time-limited URL authorizing a single PUT of
	// an object of the given content type and size under key.
	PresignUpload(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error)
	// PresignDownload returns a time-limited read URL. Returns ErrNotFound if
	// the object does not exist.
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Metadata returns existence and, when present, the stored size.
	Metadata(ctx context.Context, key string) (ObjectMetadata, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// Initializer is implemented by providers that prepare their bucket or
// container before serving traffic.
type Initializer interface {
	Init(ctx context.Context) error
}

// Initialize runs the provider's Init if it has one.
func Initialize(ctx context.Context, s Storage) error {
	if in, ok := s.(Initializer); ok {
		return in.Init(ctx)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
