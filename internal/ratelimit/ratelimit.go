package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter throttles upload invocations per account over sliding
// minute/hour/day windows. The gate is consulted once, before any
// decoding or parsing work starts.
type RateLimiter struct {
	uploadsPerMinute int
	uploadsPerHour   int
	uploadsPerDay    int
	enabled          bool

	// Per-account request tracking
	accounts map[string]*windows
	mu       sync.Mutex
}

type windows struct {
	minute []time.Time
	hour   []time.Time
	day    []time.Time
}

// NewRateLimiter creates a new rate limiter with the given per-account limits
func NewRateLimiter(uploadsPerMinute, uploadsPerHour, uploadsPerDay int, enabled bool) *RateLimiter {
	return &RateLimiter{
		uploadsPerMinute: uploadsPerMinute,
		uploadsPerHour:   uploadsPerHour,
		uploadsPerDay:    uploadsPerDay,
		enabled:          enabled,
		accounts:         make(map[string]*windows),
	}
}

// AllowUpload checks whether the account may start another upload now.
// Returns true if allowed, false if a limit is exceeded.
func (rl *RateLimiter) AllowUpload(ownerID string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.accounts[ownerID]
	if w == nil {
		w = &windows{}
		rl.accounts[ownerID] = w
	}
	w.cleanup(now)

	if rl.uploadsPerMinute > 0 && len(w.minute) >= rl.uploadsPerMinute {
		return false
	}
	if rl.uploadsPerHour > 0 && len(w.hour) >= rl.uploadsPerHour {
		return false
	}
	if rl.uploadsPerDay > 0 && len(w.day) >= rl.uploadsPerDay {
		return false
	}

	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	w.day = append(w.day, now)
	return true
}

// cleanup removes expired entries from the time windows
func (w *windows) cleanup(now time.Time) {
	w.minute = filterTimes(w.minute, now.Add(-1*time.Minute))
	w.hour = filterTimes(w.hour, now.Add(-1*time.Hour))
	w.day = filterTimes(w.day, now.Add(-24*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// Stats contains rate limiter statistics for one account
type Stats struct {
	Enabled           bool `json:"enabled"`
	UploadsLastMinute int  `json:"uploads_last_minute"`
	UploadsLastHour   int  `json:"uploads_last_hour"`
	UploadsLastDay    int  `json:"uploads_last_day"`
	LimitPerMinute    int  `json:"limit_per_minute"`
	LimitPerHour      int  `json:"limit_per_hour"`
	LimitPerDay       int  `json:"limit_per_day"`
}

// GetStats returns current usage for an account
func (rl *RateLimiter) GetStats(ownerID string) Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := Stats{
		Enabled:        true,
		LimitPerMinute: rl.uploadsPerMinute,
		LimitPerHour:   rl.uploadsPerHour,
		LimitPerDay:    rl.uploadsPerDay,
	}
	if w := rl.accounts[ownerID]; w != nil {
		w.cleanup(time.Now())
		stats.UploadsLastMinute = len(w.minute)
		stats.UploadsLastHour = len(w.hour)
		stats.UploadsLastDay = len(w.day)
	}
	return stats
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.accounts = make(map[string]*windows)
}
