package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"newsbrief/internal/domain"
)

const keyPrefix = "newsbrief:summary:"

// Store keeps summaries as JSON values. SETNX provides insert-if-absent and
// a positive TTL becomes the key expiry.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

type summaryValue struct {
	Points    []string  `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

func New(ctx context.Context, redisURL string, ttl time.Duration, log *slog.Logger) (*Store, error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return nil, errors.New("redis URL is required")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	if err = client.Ping(ctx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping: %w", err), client.Close())
	}

	log.InfoContext(ctx, "Redis store is initialized",
		"addr", opt.Addr,
		"db", opt.DB,
		"ttl", ttl)

	return NewWithClient(client, ttl), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: max(ttl, 0)}
}

func (s *Store) GetSummary(ctx context.Context, url string) (domain.SummaryRecord, bool, error) {
	data, err := s.client.Get(ctx, summaryKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SummaryRecord{}, false, nil
	}
	if err != nil {
		return domain.SummaryRecord{}, false, fmt.Errorf("get summary: %w", err)
	}

	var value summaryValue
	if err = json.Unmarshal(data, &value); err != nil {
		return domain.SummaryRecord{}, false, fmt.Errorf("decode summary: %w", err)
	}

	return domain.SummaryRecord{
		URL:       url,
		Points:    value.Points,
		CreatedAt: value.CreatedAt.UTC(),
	}, true, nil
}

func (s *Store) PutSummary(ctx context.Context, record domain.SummaryRecord) error {
	if strings.TrimSpace(record.URL) == "" {
		return errors.New("summary URL is empty")
	}

	if len(record.Points) == 0 {
		return errors.New("summary points are empty")
	}

	data, err := json.Marshal(summaryValue{Points: record.Points, CreatedAt: record.CreatedAt.UTC()})
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	ok, err := s.client.SetNX(ctx, summaryKey(record.URL), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("set summary: %w", err)
	}

	if !ok {
		return domain.ErrDuplicateKey
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func summaryKey(url string) string {
	return keyPrefix + url
}
