package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = 2 * time.Second
)

// NamedClient pairs a client with the provider name used in logs.
type NamedClient struct {
	Name   string
	Client Client
}

// Resilient retries a client on quota errors and then falls back to the next
// client in the chain. Other errors move straight to the next client.
type Resilient struct {
	Chain    []NamedClient
	Attempts int
	Backoff  time.Duration

	// OnAttempt, when set, is called before every model call.
	OnAttempt func(ctx context.Context, provider string)

	sleep func(ctx context.Context, d time.Duration) error
}

func NewResilient(chain []NamedClient, attempts int, backoff time.Duration) *Resilient {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if backoff < 0 {
		backoff = DefaultBackoff
	}
	return &Resilient{Chain: chain, Attempts: attempts, Backoff: backoff}
}

func (r *Resilient) Generate(ctx context.Context, messages []Message) (Response, error) {
	if len(r.Chain) == 0 {
		return Response{}, errors.New("no llm clients configured")
	}
	var errs []error
	for _, nc := range r.Chain {
		resp, err := r.generateWithRetry(ctx, nc, messages)
		if err == nil {
			return resp, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		log.Printf("⚠️ provider %s failed, trying next: %v", nc.Name, err)
	}
	return Response{}, fmt.Errorf("all llm providers failed: %w", errors.Join(errs...))
}

func (r *Resilient) generateWithRetry(ctx context.Context, nc NamedClient, messages []Message) (Response, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if r.OnAttempt != nil {
			r.OnAttempt(ctx, nc.Name)
		}
		resp, err := nc.Client.Generate(ctx, messages)
		if err == nil {
			return resp, nil
		}
		lastErr = Classify(nc.Name, err)
		if !IsQuota(lastErr) || attempt == attempts {
			break
		}
		log.Printf("⏳ %s quota exceeded (attempt %d/%d), retrying in %s", nc.Name, attempt, attempts, r.Backoff)
		if err := r.wait(ctx, r.Backoff); err != nil {
			return Response{}, err
		}
	}
	return Response{}, lastErr
}

func (r *Resilient) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
