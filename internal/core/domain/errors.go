package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTemporary            = errors.New("temporary failure")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// DimensionMismatchError signals that two embedding vectors from different
// models were compared. This is a data-model invariant violation, not a
// runtime condition to recover from.
type DimensionMismatchError struct {
	LenA int
	LenB int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: %d vs %d", e.LenA, e.LenB)
}

// IsDimensionMismatch reports whether err carries a DimensionMismatchError.
func IsDimensionMismatch(err error) bool {
	var mismatch *DimensionMismatchError
	return errors.As(err, &mismatch)
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
