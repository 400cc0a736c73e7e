package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultRetentionSpec  = "@every 1h"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	pruneTimeout          = 5 * time.Minute
)

type Pruner interface {
	DeleteSummariesBefore(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler periodically deletes summaries older than the configured TTL.
type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	pruner Pruner
	spec   string
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func New(ctx context.Context, pruner Pruner, spec string, ttl time.Duration, log *slog.Logger) (*Scheduler, error) {
	if ttl <= 0 {
		return nil, errors.New("retention TTL must be positive")
	}

	if spec == "" {
		spec = DefaultRetentionSpec
	}

	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:    ctx,
		cron:   c,
		pruner: pruner,
		spec:   spec,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}, nil
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.pruneExpired); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneExpired() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	before := s.now().UTC().Add(-s.ttl)

	deleted, err := s.pruner.DeleteSummariesBefore(ctx, before)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete expired summaries",
			"error", err,
			"before", before)
		return
	}

	s.log.InfoContext(ctx, "Expired summaries are deleted",
		"deleted", deleted,
		"before", before)
}
