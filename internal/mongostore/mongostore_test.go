package mongostore

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"
)

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing uri", Config{Database: "newsbrief", Collection: "summaries"}},
		{"missing database", Config{URI: "mongodb://localhost:27017", Collection: "summaries"}},
		{"missing collection", Config{URI: "mongodb://localhost:27017", Database: "newsbrief"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(context.Background(), test.cfg, slog.Default()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestTTLSeconds(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int32
	}{
		{0, 0},
		{-time.Hour, 0},
		{time.Millisecond, 1},
		{90 * time.Second, 90},
		{720 * time.Hour, 2592000},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	}

	for _, test := range tests {
		if got := ttlSeconds(test.ttl); got != test.want {
			t.Errorf("ttlSeconds(%v) = %d, want %d", test.ttl, got, test.want)
		}
	}
}

func TestPlanTTLIndex(t *testing.T) {
	tests := []struct {
		name    string
		current int32
		exists  bool
		want    int32
		change  ttlChange
	}{
		{"disabled and absent", 0, false, 0, ttlKeep},
		{"enabled and absent", 0, false, 3600, ttlCreate},
		{"unchanged", 3600, true, 3600, ttlKeep},
		{"shortened between restarts", 86400, true, 3600, ttlUpdate},
		{"lengthened between restarts", 3600, true, 86400, ttlUpdate},
		{"index without expiry", 0, true, 3600, ttlUpdate},
		{"disabled after being enabled", 3600, true, 0, ttlDrop},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := planTTLIndex(test.current, test.exists, test.want); got != test.change {
				t.Fatalf("got %s want %s", got, test.change)
			}
		})
	}
}
