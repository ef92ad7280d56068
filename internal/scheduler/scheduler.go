package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSpec = "0 9 * * *"

// Scheduler runs the daily reminder digest.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	spec       string
	loc        *time.Location
	digestFunc func(ctx context.Context) error
}

// New creates a scheduler firing spec (standard 5-field cron) in loc.
func New(spec string, loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if spec == "" {
		spec = DefaultSpec
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
		loc:    loc,
	}
}

func (s *Scheduler) SetDigestFunction(f func(ctx context.Context) error) {
	s.digestFunc = f
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.digestFunc == nil {
		log.Println("⚠️ Digest function not set, scheduler will not send reminders")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		log.Printf("🕘 Triggered reminder digest (%s %s)", s.spec, s.loc)
		if err := s.digestFunc(s.ctx); err != nil {
			log.Printf("❌ Reminder digest failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - reminder digest at %q (%s)", s.spec, s.loc)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

// Next reports the next time the digest fires.
func (s *Scheduler) Next() (time.Time, bool) {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}, false
	}
	return entries[0].Next, true
}
