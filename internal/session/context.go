package session

import (
	"context"
	"time"

	"autocrm/internal/quota"
)

// WithSession attaches the session's quota window to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return quota.NewContext(ctx, s.Quota)
}

// RecordAttempt counts a model call against the window carried by ctx, if
// any. It matches the llm.Resilient OnAttempt hook.
func RecordAttempt(ctx context.Context, provider string) {
	if w := quota.FromContext(ctx); w != nil {
		w.Record(time.Now())
	}
}
