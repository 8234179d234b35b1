package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/aussiebroadwan/squadgate/internal/access/service")

// Invitation and gate outcomes. Callers dispatch with errors.Is.
var (
	ErrNotFound        = errors.New("invitation not found")
	ErrExpired         = errors.New("invitation expired")
	ErrAlreadyRedeemed = errors.New("invitation already redeemed")
	ErrRevoked         = errors.New("invitation revoked")
	ErrEmailMismatch   = errors.New("invitation email mismatch")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidState    = errors.New("invalid invitation state")

	ErrAccountNotFound = errors.New("account not found")
)

// DefaultStoreTimeout bounds a single service operation against the store.
const DefaultStoreTimeout = 5 * time.Second

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

// retryOnce runs fn again when the first attempt failed with something other
// than a store outcome or a context error.
func retryOnce[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err == nil || !transient(err) || ctx.Err() != nil {
		return v, err
	}
	return fn()
}

func transient(err error) bool {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrAlreadyExists),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func nowFunc(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
