package redisstore

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"newsbrief/internal/domain"
)

func TestSummaryKeyIsPrefixed(t *testing.T) {
	if got := summaryKey("https://example.com/a"); got != "newsbrief:summary:https://example.com/a" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(context.Background(), "  ", time.Hour, slog.Default()); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}

func TestNewWithClientClampsNegativeTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	if s := NewWithClient(client, -time.Minute); s.ttl != 0 {
		t.Fatalf("expected ttl to be clamped, got %v", s.ttl)
	}
}

func TestPutSummaryValidatesBeforeNetwork(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := NewWithClient(client, 0)
	ctx := context.Background()

	if err := s.PutSummary(ctx, domain.SummaryRecord{URL: "", Points: []string{"a"}}); err == nil {
		t.Fatalf("expected error for empty URL")
	}

	if err := s.PutSummary(ctx, domain.SummaryRecord{URL: "https://example.com/a"}); err == nil {
		t.Fatalf("expected error for empty points")
	}
}
