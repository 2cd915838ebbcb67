package playback

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultCountdownFrom is where the auto-advance countdown starts
	DefaultCountdownFrom = 5
	// DefaultCountdownTick is the countdown step
	DefaultCountdownTick = time.Second
)

// ErrCountdownStarted is returned by Start on a countdown that already left Idle
var ErrCountdownStarted = errors.New("countdown already started")

// CountdownState is the state of an auto-advance countdown
type CountdownState int

const (
	// CountdownIdle is a countdown that has not been started
	CountdownIdle CountdownState = iota
	// CountdownCounting is a running countdown
	CountdownCounting
	// CountdownNavigated is a countdown that reached zero or was skipped and navigated
	CountdownNavigated
	// CountdownCancelled is a countdown stopped before navigating
	CountdownCancelled
)

// String returns the lowercase state name
func (s CountdownState) String() string {
	switch s {
	case CountdownIdle:
		return "idle"
	case CountdownCounting:
		return "counting"
	case CountdownNavigated:
		return "navigated"
	case CountdownCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Countdown counts down to an automatic move to the next lesson.
// navigate is called at most once, either when the count reaches zero or on GoNow.
type Countdown struct {
	mu        sync.Mutex
	state     CountdownState
	remaining int
	tick      time.Duration
	onTick    func(remaining int)
	navigate  func()
	navOnce   sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewCountdown creates an idle countdown. onTick may be nil.
func NewCountdown(from int, tick time.Duration, onTick func(remaining int), navigate func()) *Countdown {
	if from <= 0 {
		from = DefaultCountdownFrom
	}
	if tick <= 0 {
		tick = DefaultCountdownTick
	}
	return &Countdown{
		state:     CountdownIdle,
		remaining: from,
		tick:      tick,
		onTick:    onTick,
		navigate:  navigate,
		done:      make(chan struct{}),
	}
}

// Start begins counting on its own goroutine. Cancelling ctx cancels the countdown.
func (c *Countdown) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CountdownIdle {
		return ErrCountdownStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = CountdownCounting

	go c.run(ctx)
	return nil
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)
	defer c.cancel()

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if c.state == CountdownCounting {
				c.state = CountdownCancelled
			}
			c.mu.Unlock()
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != CountdownCounting {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			reached := remaining <= 0
			if reached {
				c.state = CountdownNavigated
			}
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(remaining)
			}
			if reached {
				c.fire()
				return
			}
		}
	}
}

// Cancel stops a running countdown. It reports false when the countdown was not counting.
func (c *Countdown) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CountdownCounting {
		return false
	}
	c.state = CountdownCancelled
	c.cancel()
	return true
}

// GoNow navigates immediately. It reports false when the countdown was not counting.
func (c *Countdown) GoNow() bool {
	c.mu.Lock()
	if c.state != CountdownCounting {
		c.mu.Unlock()
		return false
	}
	c.state = CountdownNavigated
	c.cancel()
	c.mu.Unlock()

	c.fire()
	return true
}

// State returns the current state and the remaining count
func (c *Countdown) State() (CountdownState, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.remaining
}

// Done is closed when the countdown goroutine has exited
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

func (c *Countdown) fire() {
	c.navOnce.Do(func() {
		if c.navigate != nil {
			c.navigate()
		}
	})
}
