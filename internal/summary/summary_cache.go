package summary

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"newsbrief/internal/domain"
)

// MemoryCache keeps recently used records in process in front of a durable
// store. Only records the durable store accepted are kept, so a writer that
// lost an insert race never shadows the stored points.
type MemoryCache struct {
	next Store
	lru  *expirable.LRU[string, domain.SummaryRecord]
}

// NewMemoryCache wraps next. A non-positive size disables the memory tier
// and returns next unchanged.
func NewMemoryCache(next Store, size int, ttl time.Duration) Store {
	if size <= 0 {
		return next
	}

	return &MemoryCache{
		next: next,
		lru:  expirable.NewLRU[string, domain.SummaryRecord](size, nil, ttl),
	}
}

func (c *MemoryCache) GetSummary(ctx context.Context, url string) (domain.SummaryRecord, bool, error) {
	if record, ok := c.lru.Get(url); ok {
		return record, true, nil
	}

	record, ok, err := c.next.GetSummary(ctx, url)
	if err != nil || !ok {
		return record, ok, err
	}

	c.lru.Add(url, record)

	return record, true, nil
}

func (c *MemoryCache) PutSummary(ctx context.Context, record domain.SummaryRecord) error {
	if err := c.next.PutSummary(ctx, record); err != nil {
		return err
	}

	c.lru.Add(record.URL, record)

	return nil
}
