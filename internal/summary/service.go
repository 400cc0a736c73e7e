package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"newsbrief/internal/domain"
	"newsbrief/internal/metrics"
	"newsbrief/internal/summarizer"
)

const DefaultGenerationTimeout = 30 * time.Second

// Store persists summary records keyed by article URL. PutSummary must be an
// atomic insert-if-absent that reports domain.ErrDuplicateKey when the URL
// is already stored.
type Store interface {
	GetSummary(ctx context.Context, url string) (domain.SummaryRecord, bool, error)
	PutSummary(ctx context.Context, record domain.SummaryRecord) error
}

type Service struct {
	store     Store
	generator summarizer.Generator
	timeout   time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
	flight    singleflight.Group
	log       *slog.Logger
}

type Option func(*Service)

// WithGenerationTimeout bounds each external generation call.
func WithGenerationTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(
	store Store,
	generator summarizer.Generator,
	log *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:     store,
		generator: generator,
		timeout:   DefaultGenerationTimeout,
		now:       time.Now,
		log:       log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Summarize returns the summary points for an article, generating and
// caching them on first request. Errors match domain.ErrInvalidRequest or
// domain.ErrGenerationFailed.
func (s *Service) Summarize(ctx context.Context, req domain.SummaryRequest) ([]string, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidRequest)
	}

	if points, ok := s.cached(ctx, req.URL); ok {
		return slices.Clone(points), nil
	}

	// The first caller's context must not cancel the generation that other
	// callers are waiting on; the generation timeout still applies.
	flightCtx := context.WithoutCancel(ctx)

	v, err, shared := s.flight.Do(req.URL, func() (any, error) {
		if points, ok := s.cached(flightCtx, req.URL); ok {
			return points, nil
		}

		return s.generate(flightCtx, req)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.log.DebugContext(ctx, "Summary generation is shared",
			"url", req.URL)
	}

	points, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type %T", domain.ErrGenerationFailed, v)
	}

	return slices.Clone(points), nil
}

func (s *Service) cached(ctx context.Context, url string) ([]string, bool) {
	record, ok, err := s.store.GetSummary(ctx, url)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to read cached summary so it is regenerated",
			"error", err,
			"url", url)

		return nil, false
	}

	if !ok || len(record.Points) == 0 {
		return nil, false
	}

	s.metrics.CacheHit()
	s.log.InfoContext(ctx, "Serving summary from cache",
		"url", url,
		"pointCount", len(record.Points),
		"createdAt", record.CreatedAt)

	return record.Points, true
}

func (s *Service) generate(ctx context.Context, req domain.SummaryRequest) ([]string, error) {
	s.metrics.CacheMiss()

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()

	raw, err := s.generator.Generate(genCtx, BuildPrompt(req))
	if err != nil {
		reason := summarizer.ReasonOf(err)
		s.metrics.GenerationFailed(string(reason))
		s.log.ErrorContext(ctx, "Failed to generate summary",
			"error", err,
			"url", req.URL,
			"reason", reason,
			"timeout", s.timeout)

		if !errors.Is(err, domain.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}

		return nil, err
	}

	points, degraded := ParsePoints(raw)
	if degraded != nil {
		reason := DegradeReason("unknown")
		var parseErr *ParseDegradedError
		if errors.As(degraded, &parseErr) {
			reason = parseErr.Reason
		}

		s.metrics.ParseDegraded(string(reason))
		s.log.WarnContext(ctx, "Summary response is not a JSON string array so fallback parsing is used",
			"error", degraded,
			"url", req.URL,
			"reason", reason,
			"rawLen", len(raw),
			"pointCount", len(points))
	}

	record := domain.SummaryRecord{
		URL:       req.URL,
		Points:    points,
		CreatedAt: s.now().UTC(),
	}

	if err = s.store.PutSummary(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			s.metrics.DuplicateInsert()
			s.log.InfoContext(ctx, "Summary is already cached by another writer",
				"url", req.URL)
		} else {
			s.log.ErrorContext(ctx, "Failed to cache summary",
				"error", err,
				"url", req.URL)
		}
	}

	s.log.InfoContext(ctx, "Summary is generated",
		"url", req.URL,
		"pointCount", len(points),
		"durationSeconds", s.now().Sub(start).Seconds())

	return points, nil
}
