package parser

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tradelens/internal/domain"
	"tradelens/internal/port"
)

// circuit tracks rate-limit backoff for one provider. A zero resetAt is closed.
type circuit struct {
	mu      sync.RWMutex
	resetAt time.Time
}

func (c *circuit) openUntil(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuit) trip(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries extractors in order, skipping those whose circuit is
// open after a rate limit. It implements port.DocumentExtractor.
type FallbackExtractor struct {
	extractors []port.DocumentExtractor
	circuits   []*circuit
	names      []string
	now        func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from ordered extractors and their names.
func NewFallbackExtractor(extractors []port.DocumentExtractor, names []string) *FallbackExtractor {
	circuits := make([]*circuit, len(extractors))
	for i := range circuits {
		circuits[i] = &circuit{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		now:        time.Now,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractedDocument, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	noteReset := func(t time.Time) {
		if earliestReset.IsZero() || t.Before(earliestReset) {
			earliestReset = t
		}
	}

	for i, e := range f.extractors {
		if resetAt, open := f.circuits[i].openUntil(now); open {
			log.Printf("parser.FallbackExtractor: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			noteReset(resetAt)
			continue
		}

		doc, err := e.Extract(ctx, input)
		if err == nil {
			return doc, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Printf("parser.FallbackExtractor: %s failed: %v", f.names[i], err)
		lastErr = err

		if retryAfter, ok := RetryAfterOf(err); ok {
			resetAt := now.Add(retryAfter)
			f.circuits[i].trip(resetAt)
			noteReset(resetAt)
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all extractors rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}
