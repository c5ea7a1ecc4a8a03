package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable marks transient infrastructure failures (timeouts, network, throttling).
	// It must never be interpreted as "no match".
	ErrStoreUnavailable = errors.New("rule store unavailable")

	// ErrDataIntegrity marks stored data that cannot be resolved safely.
	ErrDataIntegrity = errors.New("rule data integrity violation")
)

// StoreUnavailable wraps cause so that it matches ErrStoreUnavailable.
// Errors that already match are returned unchanged.
func StoreUnavailable(op string, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, ErrStoreUnavailable) {
		return cause
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, cause)
}

// DataIntegrityError reports a malformed stored record.
type DataIntegrityError struct {
	Key    string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("malformed record %q: %s", e.Key, e.Reason)
}

func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }

// ConflictError reports several EXACT rules matching the same request path.
type ConflictError struct {
	Domain  string
	Path    string
	Targets []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d exact redirect rules match %s%s: %s", len(e.Targets), e.Domain, e.Path, strings.Join(e.Targets, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrDataIntegrity }
