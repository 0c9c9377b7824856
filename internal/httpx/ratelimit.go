package httpx

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between requests to one domain
// unless the domain is configured slower.
const DefaultInterval = 2 * time.Second

// Limiter gates outbound requests per resolved domain. Requests to
// different domains may proceed in parallel; requests to the same domain
// serialize on its limiter. Safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	domains   map[string]*rate.Limiter
	fallback  time.Duration
	overrides map[string]time.Duration
}

// NewLimiter builds a limiter with a default interval and optional slower
// per-domain overrides.
func NewLimiter(fallback time.Duration, overrides map[string]time.Duration) *Limiter {
	if fallback <= 0 {
		fallback = DefaultInterval
	}
	return &Limiter{
		domains:   map[string]*rate.Limiter{},
		fallback:  fallback,
		overrides: overrides,
	}
}

// Wait blocks until the domain of rawURL may be hit again, then stamps the
// domain's timer.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	return l.limiterFor(Domain(rawURL)).Wait(ctx)
}

func (l *Limiter) limiterFor(domain string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.domains[domain]; ok {
		return lim
	}

	interval := l.fallback
	if override, ok := l.overrides[domain]; ok && override > 0 {
		interval = override
	}

	lim := rate.NewLimiter(rate.Every(interval), 1)
	l.domains[domain] = lim
	return lim
}
