package service

import (
	"errors"
	"fmt"

	"docflow/internal/repository"
	"docflow/internal/storage"
)

var (
	// ErrInvalidRequest marks structurally invalid input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrPolicyViolation marks input rejected by the upload policy (size, MIME type).
	ErrPolicyViolation = errors.New("upload policy violation")
	// ErrNotFound is returned when the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidState is returned when the document cannot take the requested transition.
	ErrInvalidState = errors.New("invalid document state")
	// ErrObjectMissing is returned when the stored object is absent from the object store.
	ErrObjectMissing = errors.New("object missing from storage")
	// ErrConflict is returned when a concurrent write won; the caller may retry.
	ErrConflict = errors.New("concurrent modification")
)

// fromRepo translates repository and storage sentinels into service errors.
func fromRepo(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrObjectMissing, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
