// Package session caches generated LaTeX documents under short-lived keys.
package session

import (
	"context"
	"errors"
	"time"
)

// Default cache timings.
const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// ErrNotFound is returned for unknown or expired session keys.
var ErrNotFound = errors.New("session not found")

// Store caches generated documents. Implementations are safe for concurrent use.
type Store interface {
	Put(ctx context.Context, id, content string) error
	Get(ctx context.Context, id string) (string, error)
}

// KeyError reports an unusable session key.
type KeyError struct {
	Message string
}

func (e *KeyError) Error() string {
	return e.Message
}

func checkKey(id string) error {
	if id == "" {
		return &KeyError{Message: "session id is required"}
	}
	return nil
}
