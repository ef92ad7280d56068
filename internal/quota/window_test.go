package quota

import (
	"context"
	"testing"
	"time"
)

func TestWindowSlides(t *testing.T) {
	w := NewWindow(30)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	w.Record(base)
	w.Record(base.Add(20 * time.Second))
	w.Record(base.Add(50 * time.Second))

	if got := w.Count(base.Add(55 * time.Second)); got != 3 {
		t.Fatalf("want 3 calls, got %d", got)
	}
	if got := w.Count(base.Add(61 * time.Second)); got != 2 {
		t.Fatalf("want 2 calls after first expired, got %d", got)
	}

	u := w.Snapshot(base.Add(70 * time.Second))
	if u.Calls != 2 || u.Limit != 30 {
		t.Fatalf("unexpected usage: %+v", u)
	}
	if u.ResetIn != 10*time.Second {
		t.Fatalf("unexpected reset: %v", u.ResetIn)
	}

	if u := w.Snapshot(base.Add(5 * time.Minute)); u.Calls != 0 || u.ResetIn != 0 {
		t.Fatalf("window should be empty: %+v", u)
	}
}

func TestContextRoundTrip(t *testing.T) {
	w := NewWindow(1)
	if FromContext(context.Background()) != nil {
		t.Fatalf("empty context should carry no window")
	}
	if FromContext(NewContext(context.Background(), w)) != w {
		t.Fatalf("window not carried")
	}
}
