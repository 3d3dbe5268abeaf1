package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP. Buckets not used
// for idleTTL are dropped on the next eviction pass, which runs at most once
// per idleTTL from GetLimiter.
type IPRateLimiter struct {
	ips       map[string]*ipBucket
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int

	idleTTL   time.Duration
	lastEvict time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       make(map[string]*ipBucket),
		rateLimit: r,
		burstRate: b,
		idleTTL:   config.RateLimiterIdleTTL,
		lastEvict: time.Now(),
		now:       time.Now,
	}
}

// WithClock replaces the time source used for idle eviction.
func (i *IPRateLimiter) WithClock(now func() time.Time) *IPRateLimiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.now = now
	i.lastEvict = now()
	return i
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastEvict) >= i.idleTTL {
		i.evictIdle(now)
	}

	bucket, exists := i.ips[ip]
	if !exists {
		bucket = &ipBucket{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.ips[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter
}

// Len reports how many IPs currently hold a bucket.
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

func (i *IPRateLimiter) evictIdle(now time.Time) {
	for ip, bucket := range i.ips {
		if now.Sub(bucket.lastSeen) >= i.idleTTL {
			delete(i.ips, ip)
		}
	}
	i.lastEvict = now
}

//TODO: move the per-IP buckets to redis once more than one API instance runs
