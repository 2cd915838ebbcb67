package playback

import (
	"math"
	"time"

	"golang.org/x/time/rate"
)

// DefaultSampleInterval is the minimum spacing between forwarded samples
const DefaultSampleInterval = 250 * time.Millisecond

// Percent converts a play position into a whole percentage of duration, clamped to 0..100.
// It reports false when no sample can be derived: unknown, zero, negative or non-finite
// duration, or a position that is not a number.
func Percent(position, duration float64) (int, bool) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) || math.IsNaN(position) {
		return 0, false
	}

	p := math.Floor(position / duration * 100)
	switch {
	case p < 0:
		return 0, true
	case p > 100:
		return 100, true
	}
	return int(p), true
}

// Sampler turns position updates into percentages at a bounded rate.
// It is not safe for concurrent use; the player calls it from its own goroutine.
type Sampler struct {
	limiter *rate.Limiter
	stopped bool
}

// NewSampler creates a sampler forwarding at most one sample per interval
func NewSampler(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Sampler{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Sample returns the percentage for the position at time now, or false when the sample
// is suppressed by an invalid duration, the rate limit, or a stopped media source.
func (s *Sampler) Sample(position, duration float64, now time.Time) (int, bool) {
	if s.stopped {
		return 0, false
	}

	percent, ok := Percent(position, duration)
	if !ok {
		return 0, false
	}

	if !s.limiter.AllowN(now, 1) {
		return 0, false
	}

	return percent, true
}

// Stop suppresses all further samples, used when the media source becomes unavailable
func (s *Sampler) Stop() {
	s.stopped = true
}

// Stopped reports whether Stop was called
func (s *Sampler) Stopped() bool {
	return s.stopped
}
