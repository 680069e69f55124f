package memory

import (
	"context"
	"sync"
	"time"

	"ramadan-timetable-bot/internal/domain/ports/repository"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is the single-process counterpart of the Redis limiter.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// Compile-time check
var _ repository.RateLimiter = (*RateLimiter)(nil)

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*window), now: time.Now}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, win time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(win)}
		r.windows[key] = w
		r.sweep(now)
	}
	w.count++
	return w.count <= limit, nil
}

// sweep drops expired windows. Called with mu held.
func (r *RateLimiter) sweep(now time.Time) {
	for k, w := range r.windows {
		if !now.Before(w.resetAt) {
			delete(r.windows, k)
		}
	}
}
