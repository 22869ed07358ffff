package logger

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitedLogger drops messages of a category once it exceeds its budget.
// Dropped messages are counted and reported on the next message that passes.
type RateLimitedLogger struct {
	base Logger

	mu       sync.Mutex
	limiters map[string]*categoryLimiter
	limit    rate.Limit
	burst    int
}

type categoryLimiter struct {
	limiter *rate.Limiter
	dropped int64
}

// NewRateLimitedLogger allows burst messages per category and then perSecond
// messages per second.
func NewRateLimitedLogger(base Logger, perSecond float64, burst int) *RateLimitedLogger {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedLogger{
		base:     base,
		limiters: make(map[string]*categoryLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (r *RateLimitedLogger) category(name string) *categoryLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.limiters[name]
	if !ok {
		c = &categoryLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[name] = c
	}
	return c
}

// Log emits msg under category if the category still has budget.
func (r *RateLimitedLogger) Log(level logrus.Level, category, msg string, fields map[string]interface{}) bool {
	c := r.category(category)
	if !c.limiter.Allow() {
		atomic.AddInt64(&c.dropped, 1)
		return false
	}

	l := r.base
	if len(fields) > 0 {
		l = l.WithFields(fields)
	}
	if dropped := atomic.SwapInt64(&c.dropped, 0); dropped > 0 {
		l = l.WithField("suppressed", dropped)
	}
	l.Log(level, msg)
	return true
}

// Dropped returns how many messages of category are waiting to be reported.
func (r *RateLimitedLogger) Dropped(category string) int64 {
	return atomic.LoadInt64(&r.category(category).dropped)
}
