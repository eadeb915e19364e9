// Package clock provides a simulated media clock that satisfies
// player.Clock, for headless playback and tests.
package clock

import (
	"context"
	"fmt"
	"time"
)

// Sim is a media clock advanced explicitly or by a wall-clock ticker.
// It is driven from a single goroutine.
type Sim struct {
	now      float64
	duration float64
	rate     float64
	paused   bool
	ended    bool

	// fire a tick from inside Seek, like hosts that report time changes
	// synchronously
	syncSeekTicks bool

	onTick  func(t float64)
	onEnded func()
}

type SimOption func(*Sim)

// media length in seconds, 0 for unbounded
func WithDuration(seconds float64) SimOption {
	return func(s *Sim) {
		if seconds > 0 {
			s.duration = seconds
		}
	}
}

func WithRate(rate float64) SimOption {
	return func(s *Sim) {
		if rate > 0 {
			s.rate = rate
		}
	}
}

func WithSyncSeekTicks(enabled bool) SimOption {
	return func(s *Sim) {
		s.syncSeekTicks = enabled
	}
}

// starts paused at 0, like a freshly loaded media element
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{rate: 1, paused: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sim) OnTick(fn func(t float64)) {
	s.onTick = fn
}

func (s *Sim) OnEnded(fn func()) {
	s.onEnded = fn
}

func (s *Sim) CurrentTime() float64 {
	return s.now
}

func (s *Sim) Duration() float64 {
	return s.duration
}

func (s *Sim) Seek(t float64) {
	s.now = s.clamp(t)
	s.ended = false
	if s.syncSeekTicks {
		s.tick()
	}
}

func (s *Sim) Play() {
	if s.ended {
		s.now = 0
		s.ended = false
	}
	s.paused = false
}

func (s *Sim) Pause() {
	s.paused = true
}

func (s *Sim) Paused() bool {
	return s.paused
}

func (s *Sim) Ended() bool {
	return s.ended
}

func (s *Sim) Rate() float64 {
	return s.rate
}

func (s *Sim) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("playback rate must be positive, got %v", rate)
	}
	s.rate = rate
	return nil
}

// Advance moves media time forward by dt wall seconds scaled by the rate
// and fires a tick. It reports false once paused or at the end.
func (s *Sim) Advance(dt float64) bool {
	if s.paused || s.ended {
		return false
	}

	s.now += dt * s.rate
	if s.duration > 0 && s.now >= s.duration {
		s.now = s.duration
		s.paused = true
		s.ended = true
		s.tick()
		if s.onEnded != nil {
			s.onEnded()
		}
		return false
	}

	s.tick()
	return true
}

// Run advances the clock on a wall-clock ticker until ctx is done or the
// media ends.
func (s *Sim) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Advance(interval.Seconds()) && s.ended {
				return nil
			}
		}
	}
}

// RunSteps advances without sleeping, at most maxSteps times. It returns
// the number of steps taken.
func (s *Sim) RunSteps(ctx context.Context, step time.Duration, maxSteps int) (int, error) {
	if step <= 0 {
		return 0, fmt.Errorf("tick interval must be positive, got %s", step)
	}

	n := 0
	for n < maxSteps {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		n++
		if !s.Advance(step.Seconds()) {
			break
		}
	}
	return n, nil
}

func (s *Sim) tick() {
	if s.onTick != nil {
		s.onTick(s.now)
	}
}

func (s *Sim) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if s.duration > 0 && t > s.duration {
		return s.duration
	}
	return t
}
