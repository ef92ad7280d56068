// Package quota tracks model calls over a sliding one-minute window so the
// operator can see how close the session is to the provider's rate limit.
// It never blocks calls.
package quota

import (
	"context"
	"sync"
	"time"
)

const Span = time.Minute

type Usage struct {
	Calls   int
	Limit   int
	ResetIn time.Duration
}

type Window struct {
	mu    sync.Mutex
	limit int
	calls []time.Time
}

func NewWindow(limit int) *Window {
	return &Window{limit: limit}
}

func (w *Window) Record(t time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(t)
	w.calls = append(w.calls, t)
}

func (w *Window) Count(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	return len(w.calls)
}

// Snapshot reports usage at now. ResetIn is the time until the oldest call
// leaves the window.
func (w *Window) Snapshot(now time.Time) Usage {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	u := Usage{Calls: len(w.calls), Limit: w.limit}
	if len(w.calls) > 0 {
		u.ResetIn = w.calls[0].Add(Span).Sub(now)
	}
	return u
}

func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-Span)
	i := 0
	for i < len(w.calls) && !w.calls[i].After(cutoff) {
		i++
	}
	w.calls = w.calls[i:]
}

type ctxKey struct{}

// NewContext returns ctx carrying w, so code deep in the model call chain
// can record attempts against the session's window.
func NewContext(ctx context.Context, w *Window) context.Context {
	return context.WithValue(ctx, ctxKey{}, w)
}

func FromContext(ctx context.Context) *Window {
	w, _ := ctx.Value(ctxKey{}).(*Window)
	return w
}
