package sim

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is the wall-clock time between simulated years.
const DefaultTickInterval = 2500 * time.Millisecond

// Scheduler drives a session's tick at a fixed wall-clock interval. It is the
// only caller of the tick callback, so ticks never overlap: a tick runs to
// completion before the next interval is paced.
type Scheduler struct {
	Interval time.Duration

	mu      sync.Mutex
	speed   float64 // multiplier: 1.0 = real-time, 0 = suspended
	running atomic.Bool

	onTick func()
}

// NewScheduler creates a scheduler firing onTick every interval.
func NewScheduler(interval time.Duration, onTick func()) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		Interval: interval,
		speed:    1.0,
		onTick:   onTick,
	}
}

// Speed returns the current speed multiplier.
func (s *Scheduler) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// SetSpeed adjusts the tick cadence. 0 suspends ticking without stopping the
// loop; values above 1 compress real time.
func (s *Scheduler) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed < 0 {
		speed = 0
	}
	s.speed = speed
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Run starts the tick loop. Blocks until Stop is called.
func (s *Scheduler) Run() {
	s.running.Store(true)
	slog.Debug("scheduler started", "interval", s.Interval)

	for s.running.Load() {
		speed := s.Speed()
		if speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		s.onTick()

		// Sleep for the remainder of the interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(s.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Debug("scheduler stopped")
}

// Stop halts the tick loop after the in-flight tick completes.
func (s *Scheduler) Stop() {
	s.running.Store(false)
}
