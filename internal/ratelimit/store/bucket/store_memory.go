package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cartoes/internal/ratelimit/models"
)

// InMemoryBucketStore keeps one token bucket per key. Idle buckets are
// evicted by the janitor.
type InMemoryBucketStore struct {
	mu           sync.Mutex
	buckets      map[string]*entry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Option func(*InMemoryBucketStore)

func WithIdleTTL(d time.Duration) Option {
	return func(s *InMemoryBucketStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) Option {
	return func(s *InMemoryBucketStore) { s.cleanupEvery = d }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryBucketStore) { s.now = now }
}

func New(rps float64, burst int, opts ...Option) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets:      make(map[string]*entry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow takes one token from key's bucket.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string) (*models.RateLimitResult, error) {
	now := s.now()

	s.mu.Lock()
	e, ok := s.buckets[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)

	result := &models.RateLimitResult{
		Allowed:   allowed,
		Limit:     s.burst,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetAt:   now.Add(s.untilTokens(tokens, float64(s.burst))),
	}
	if !allowed {
		result.RetryAfter = max(int(math.Ceil(s.untilTokens(tokens, 1).Seconds())), 1)
	}
	return result, nil
}

// untilTokens is how long the bucket needs to refill from have to want.
func (s *InMemoryBucketStore) untilTokens(have, want float64) time.Duration {
	if have >= want || s.rps <= 0 {
		return 0
	}
	return time.Duration((want - have) / float64(s.rps) * float64(time.Second))
}

// Len reports the number of live buckets.
func (s *InMemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Cleanup evicts buckets idle for longer than the idle TTL.
func (s *InMemoryBucketStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(s.buckets, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (s *InMemoryBucketStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}
	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
