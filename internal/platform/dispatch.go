package platform

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"

	deverrors "devutils/internal/errors"
)

// Table maps platform keys to per-platform values. Keys are either concrete
// types (Ubuntu) or family keys (Debian).
type Table[H any] map[Type]H

// Lookup returns the entry for p: the concrete type first, then its family.
func (t Table[H]) Lookup(p Platform) (H, bool) {
	if h, ok := t[p.Type]; ok {
		return h, true
	}
	if h, ok := t[p.Family]; ok {
		return h, true
	}
	var zero H
	return zero, false
}

// Keys returns the platform keys of the table, sorted.
func (t Table[H]) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Handler is the function run for one platform.
type Handler func(ctx context.Context) error

// Handlers is a dispatch table of Handler functions.
type Handlers = Table[Handler]

// Dispatch runs the handler registered for p. For an unsupported platform it
// returns an error wrapping ErrUnsupportedPlatform and runs nothing.
func Dispatch(ctx context.Context, p Platform, handlers Handlers) error {
	h, ok := handlers.Lookup(p)
	if !ok || h == nil {
		return Unsupported(p)
	}
	return h(ctx)
}

// Unsupported builds the error returned for a platform without a handler.
func Unsupported(p Platform) error {
	return errors.Wrapf(deverrors.ErrUnsupportedPlatform, "%s", p.Type)
}
