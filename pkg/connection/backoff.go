package connection

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Auto-connect pacing defaults.
const (
	InitialBackoff    = 1 * time.Second
	MaxBackoff        = 30 * time.Second
	BackoffMultiplier = 2.0

	// JitterFactor is the largest extra delay as a fraction of the base.
	JitterFactor = 0.25
)

// BackoffConfig customizes backoff parameters. Zero durations and a
// multiplier <= 1 take the defaults; zero jitter disables jitter.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

func (c BackoffConfig) withDefaults() BackoffConfig {
	if c.Initial <= 0 {
		c.Initial = InitialBackoff
	}
	if c.Max <= 0 {
		c.Max = MaxBackoff
	}
	if c.Multiplier <= 1 {
		c.Multiplier = BackoffMultiplier
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	return c
}

// Backoff paces open attempts from a periodic pass. Each granted attempt
// blocks the following ones for an exponentially growing delay until Reset.
type Backoff struct {
	mu sync.Mutex

	cfg       BackoffConfig
	attempts  int
	notBefore time.Time
	jitter    func() float64
}

// NewBackoff creates a Backoff with the default schedule and jitter.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{Jitter: JitterFactor})
}

// NewBackoffWithConfig creates a Backoff from cfg.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	return &Backoff{
		cfg:    cfg.withDefaults(),
		jitter: rand.Float64,
	}
}

// Delay returns the base delay that follows attempt n (0-based), without
// jitter.
func (b *Backoff) Delay(n int) time.Duration {
	d := float64(b.cfg.Initial) * math.Pow(b.cfg.Multiplier, float64(n))
	if d >= float64(b.cfg.Max) {
		return b.cfg.Max
	}
	return time.Duration(d)
}

// Ready reports whether an attempt is allowed at now. A true result counts
// as an attempt and defers the next one.
func (b *Backoff) Ready(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Before(b.notBefore) {
		return false
	}

	d := b.Delay(b.attempts)
	if b.cfg.Jitter > 0 {
		d += time.Duration(float64(d) * b.cfg.Jitter * b.jitter())
	}
	b.notBefore = now.Add(d)
	b.attempts++
	return true
}

// NotBefore returns the earliest time the next attempt is allowed.
func (b *Backoff) NotBefore() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notBefore
}

// Reset clears the attempt count. Call it after a completed handshake.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
	b.notBefore = time.Time{}
}

// Attempts returns the number of attempts granted since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}
