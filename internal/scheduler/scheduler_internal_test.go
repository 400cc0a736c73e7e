package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type stubPruner struct {
	mu      sync.Mutex
	calls   int
	befores []time.Time
	err     error
}

func (p *stubPruner) DeleteSummariesBefore(_ context.Context, before time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.befores = append(p.befores, before)

	return 1, p.err
}

func (p *stubPruner) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

func TestNewRequiresPositiveTTL(t *testing.T) {
	if _, err := New(context.Background(), &stubPruner{}, "", 0, slog.Default()); err == nil {
		t.Fatalf("expected error for zero TTL")
	}
}

func TestNewDefaultsSpec(t *testing.T) {
	s, err := New(context.Background(), &stubPruner{}, "", time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.spec != DefaultRetentionSpec {
		t.Fatalf("expected default spec, got %q", s.spec)
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s, err := New(context.Background(), &stubPruner{}, "not a cron spec", time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = s.Start(); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestPruneExpiredUsesTTLCutoff(t *testing.T) {
	pruner := &stubPruner{}
	s, err := New(context.Background(), pruner, "", 24*time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Date(2025, 2, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.pruneExpired()

	if pruner.callCount() != 1 {
		t.Fatalf("expected one prune call, got %d", pruner.callCount())
	}

	if want := now.Add(-24 * time.Hour); !pruner.befores[0].Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, pruner.befores[0])
	}
}

func TestPruneExpiredSurvivesPrunerError(t *testing.T) {
	pruner := &stubPruner{err: errors.New("boom")}
	s, err := New(context.Background(), pruner, "", time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.pruneExpired()
	s.pruneExpired()

	if pruner.callCount() != 2 {
		t.Fatalf("expected two prune calls, got %d", pruner.callCount())
	}
}

func TestPruneExpiredSkipsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pruner := &stubPruner{}
	s, err := New(ctx, pruner, "", time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.pruneExpired()

	if pruner.callCount() != 0 {
		t.Fatalf("expected no prune calls, got %d", pruner.callCount())
	}
}

func TestStartAndStop(t *testing.T) {
	s, err := New(context.Background(), &stubPruner{}, "@every 1h", time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err = s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Stop()
}
