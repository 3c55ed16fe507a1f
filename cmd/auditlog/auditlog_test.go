package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ride-service/internal/models"
)

// fakeSink implements TrailSink for tests
type fakeSink struct {
	fail  int // number of times to fail before succeeding
	calls int
	keys  []string
}

func (f *fakeSink) Append(ctx context.Context, key string, entry []byte, limit int64) error {
	f.calls++
	f.keys = append(f.keys, key)
	if f.calls <= f.fail {
		return errors.New("redis fail")
	}
	return nil
}

func transitionEvent() *models.TransitionEvent {
	return &models.TransitionEvent{
		RideID: 42, FromStatus: models.StatusPending, ToStatus: models.StatusQuoted,
		Actor: "admin", At: time.Now(),
	}
}

func TestAppendTrailWithRetry_SucceedsAfterRetries(t *testing.T) {
	f := &fakeSink{fail: 2}
	start := time.Now()
	if err := appendTrailWithRetry(context.Background(), f, transitionEvent(), 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got err=%v", err)
	}
	if f.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.calls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected at least one backoff")
	}
	if f.keys[0] != "audit:ride:42" {
		t.Fatalf("key = %s", f.keys[0])
	}
}

func TestAppendTrailWithRetry_FailsWhenExhausted(t *testing.T) {
	f := &fakeSink{fail: 5}
	if err := appendTrailWithRetry(context.Background(), f, transitionEvent(), 3, 5*time.Millisecond); err == nil {
		t.Fatalf("expected error after retries")
	}
	if f.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.calls)
	}
}
