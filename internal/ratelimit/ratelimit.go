package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"realestate-trade-map/internal/metrics"
)

// Limits caps requests per client over sliding windows. Zero disables a window.
type Limits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

type window struct {
	minute []time.Time
	hour   []time.Time
	day    []time.Time
}

// RateLimiter tracks request timestamps per client key
type RateLimiter struct {
	limits  Limits
	enabled bool
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

// NewRateLimiter creates a new rate limiter with the given limits
func NewRateLimiter(limits Limits, enabled bool) *RateLimiter {
	return &RateLimiter{
		limits:  limits,
		enabled: enabled,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

// Allow records a request for key and reports whether it fits every window.
// Rejected requests are not recorded.
func (rl *RateLimiter) Allow(key string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok {
		w = &window{}
		rl.clients[key] = w
	}
	w.cleanup(now)

	if exceeded(len(w.minute), rl.limits.PerMinute) ||
		exceeded(len(w.hour), rl.limits.PerHour) ||
		exceeded(len(w.day), rl.limits.PerDay) {
		return false
	}

	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	w.day = append(w.day, now)
	return true
}

func exceeded(count, limit int) bool {
	return limit > 0 && count >= limit
}

// cleanup drops timestamps that left each window
func (w *window) cleanup(now time.Time) {
	w.minute = filterTimes(w.minute, now.Add(-time.Minute))
	w.hour = filterTimes(w.hour, now.Add(-time.Hour))
	w.day = filterTimes(w.day, now.Add(-24*time.Hour))
}

// filterTimes keeps only times after the cutoff. Timestamps are appended in
// order, so the first one after the cutoff starts the kept tail.
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	for i, t := range times {
		if t.After(cutoff) {
			return times[i:]
		}
	}
	return times[:0]
}

// Stats contains rate limiter statistics for one client
type Stats struct {
	Enabled             bool `json:"enabled"`
	Clients             int  `json:"clients"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	RequestsLastDay     int  `json:"requests_last_day"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	LimitPerDay         int  `json:"limit_per_day"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
	RemainingThisDay    int  `json:"remaining_this_day"`
}

// GetStats returns the window counts of key. Idle clients are pruned on the way.
func (rl *RateLimiter) GetStats(key string) Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, w := range rl.clients {
		w.cleanup(now)
		if len(w.day) == 0 {
			delete(rl.clients, k)
		}
	}

	w, ok := rl.clients[key]
	if !ok {
		w = &window{}
	}
	return Stats{
		Enabled:             true,
		Clients:             len(rl.clients),
		RequestsLastMinute:  len(w.minute),
		RequestsLastHour:    len(w.hour),
		RequestsLastDay:     len(w.day),
		LimitPerMinute:      rl.limits.PerMinute,
		LimitPerHour:        rl.limits.PerHour,
		LimitPerDay:         rl.limits.PerDay,
		RemainingThisMinute: remaining(rl.limits.PerMinute, len(w.minute)),
		RemainingThisHour:   remaining(rl.limits.PerHour, len(w.hour)),
		RemainingThisDay:    remaining(rl.limits.PerDay, len(w.day)),
	}
}

func remaining(limit, used int) int {
	if limit <= 0 {
		return -1
	}
	return max(0, limit-used)
}

// Reset clears all tracked requests
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.clients = make(map[string]*window)
}

// Middleware enforces the limiter per client IP and answers 429 with the
// client's stats once a window is full.
func Middleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.Allow(key) {
			metrics.RateLimited.Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
				"stats":   rl.GetStats(key),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// StatsHandler reports the caller's limiter stats.
func StatsHandler(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, rl.GetStats(c.ClientIP()))
	}
}
