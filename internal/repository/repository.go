package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a versioned write finds a newer version stored.
	ErrConflict = errors.New("record was modified concurrently")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
)

// Repositories groups the stores that take part in one unit of work.
type Repositories struct {
	Documents DocumentRepository
	Flows     ValidationFlowRepository
}

// Transactor runs fn inside a single transaction. The repositories passed to
// fn are bound to that transaction; if fn returns an error nothing is persisted.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
