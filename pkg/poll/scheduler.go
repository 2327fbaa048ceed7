package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the polling cadence.
const DefaultInterval = 250 * time.Millisecond

// PassFunc is one unit of work run on every tick.
type PassFunc func(ctx context.Context) error

type pass struct {
	name string
	fn   PassFunc
}

// Scheduler runs passes on a fixed interval.
type Scheduler struct {
	mu       sync.RWMutex
	passes   []pass
	interval time.Duration
	logger   *slog.Logger

	// Background processing
	cancel    context.CancelFunc
	processWg sync.WaitGroup
	running   atomic.Bool
	ticks     atomic.Uint64
}

// NewScheduler creates a scheduler. A non-positive interval selects
// DefaultInterval; logger may be nil.
func NewScheduler(interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		logger:   logger,
	}
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// AddPass appends a pass. Passes added while running take effect on the
// next tick.
func (s *Scheduler) AddPass(name string, fn PassFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passes = append(s.passes, pass{name: name, fn: fn})
}

// Start begins ticking in the background until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	if s.running.Swap(true) {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.processWg.Add(1)
	go s.processLoop(ctx)
}

// Stop stops ticking and waits for the running tick to finish.
func (s *Scheduler) Stop() {
	if !s.running.Swap(false) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.processWg.Wait()
}

// Running reports whether the background loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Ticks returns the number of completed ticks.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

// Tick runs every pass once on the calling goroutine.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.RLock()
	passes := make([]pass, len(s.passes))
	copy(passes, s.passes)
	s.mu.RUnlock()

	for _, p := range passes {
		if err := s.runPass(ctx, p); err != nil {
			s.warnLog("pass failed", "pass", p.name, "error", err)
		}
	}
	s.ticks.Add(1)
}

func (s *Scheduler) runPass(ctx context.Context, p pass) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.fn(ctx)
}

func (s *Scheduler) processLoop(ctx context.Context) {
	defer s.processWg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) warnLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, append([]any{"component", "poll"}, args...)...)
	}
}
