// Package service implements the group registry, the ledger engine and the
// identity flows. Services take already-resolved user IDs and return
// *apperr.Error values; transport adapters live in internal/api and
// internal/rpc.
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/storage"
)

// LedgerRecorder receives ledger events, typically to update metrics.
type LedgerRecorder interface {
	ExpenseRecorded()
	ExpenseDeleted(shares int64)
	ShareSettled()
}

type nopRecorder struct{}

func (nopRecorder) ExpenseRecorded()     {}
func (nopRecorder) ExpenseDeleted(int64) {}
func (nopRecorder) ShareSettled()        {}

// Option configures a service.
type Option func(*options)

type options struct {
	now      func() time.Time
	recorder LedgerRecorder
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source used for created/updated/settled timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRecorder sets the sink for ledger events.
func WithRecorder(r LedgerRecorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// storeError maps a store failure to a typed error. ErrNotFound becomes a
// NotFound carrying notFoundMsg; anything else is Internal.
func storeError(err error, notFoundMsg, internalMsg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("%s", notFoundMsg)
	}
	return apperr.Internal(err, internalMsg)
}

// requireText trims s and checks its length in runes.
func requireText(field, s string, minLen, maxLen int) (string, error) {
	s = strings.TrimSpace(s)
	n := len([]rune(s))
	if n < minLen {
		if minLen == 1 {
			return "", apperr.InvalidArgument("%s is required", field)
		}
		return "", apperr.InvalidArgument("%s must be at least %d characters", field, minLen)
	}
	if n > maxLen {
		return "", apperr.InvalidArgument("%s must be at most %d characters", field, maxLen)
	}
	return s, nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.InvalidArgument("%s is required", field)
	}
	return nil
}

func notFound(kind, id string) error {
	return apperr.NotFound("%s %s not found", kind, id)
}
