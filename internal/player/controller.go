package player

import (
	"fmt"

	"github.com/mgpai22/recite/internal/logging"
	"github.com/mgpai22/recite/internal/subtitle"
)

// float slack on the near-end comparison, end - t is rarely exact
const nearEndSlack = 1e-9

// Controller owns the cue list and playback state for one loaded
// video/subtitle pair and decides when to force the clock back to the
// start of the active cue.
//
// It is not safe for concurrent use; the host calls Tick and the
// navigation methods from a single goroutine.
type Controller struct {
	clock    Clock
	listener Listener
	logger   *logging.Logger

	cues    []subtitle.Cue
	state   State
	playing bool
	ticking bool
}

type Option func(*Controller)

func WithListener(l Listener) Option {
	return func(c *Controller) {
		if l != nil {
			c.listener = l
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// initial repeat target, defaults to a single play
func WithRepeatTarget(r RepeatTarget) Option {
	return func(c *Controller) {
		c.state.RepeatTarget = r
	}
}

func WithVisible(visible bool) Option {
	return func(c *Controller) {
		c.state.Visible = visible
	}
}

func New(clock Clock, opts ...Option) (*Controller, error) {
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}

	c := &Controller{
		clock:    clock,
		listener: ListenerFuncs{},
		logger:   logging.NewNop(),
		state: State{
			ActiveCueIndex: -1,
			RepeatTarget:   1,
			Visible:        true,
			Phase:          PhaseIdle,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.state.RepeatTarget.Valid() {
		return nil, fmt.Errorf("invalid repeat target %d", c.state.RepeatTarget)
	}
	c.playing = !clock.Paused()

	return c, nil
}

// Load replaces the cue list and resets all repeat bookkeeping.
func (c *Controller) Load(cues []subtitle.Cue) {
	loaded := make([]subtitle.Cue, len(cues))
	copy(loaded, cues)
	c.cues = loaded

	c.reset()
	c.logger.Debugw("Loaded cues", "count", len(loaded))
	c.notifyActiveCue()
	c.notifyRepeatState()
}

// Tick re-derives the active cue from t and issues a repeat seek when the
// cue is about to end and the repeat budget allows it. Ticks raised
// synchronously by that seek are ignored.
func (c *Controller) Tick(t float64) {
	if c.ticking {
		return
	}
	c.ticking = true
	defer func() { c.ticking = false }()

	if len(c.cues) == 0 {
		c.state.Phase = PhaseIdle
		return
	}

	if idx := subtitle.FindActiveCue(c.cues, t); idx != -1 &&
		idx != c.state.ActiveCueIndex {
		c.logger.Debugw("Active cue changed",
			"from", c.state.ActiveCueIndex,
			"to", idx,
			"time", t,
		)
		c.state.ActiveCueIndex = idx
		c.state.RepeatsSoFar = 0
		c.state.Phase = PhaseTracking
		c.notifyActiveCue()
		c.notifyRepeatState()
	}

	if c.state.ActiveCueIndex == -1 {
		c.state.Phase = PhaseIdle
		return
	}

	cue := c.cues[c.state.ActiveCueIndex]
	timeUntilEnd := cue.End - t
	if timeUntilEnd > NearEndWindow+nearEndSlack {
		c.state.Phase = PhaseTracking
		return
	}

	if c.state.RepeatTarget.IsInfinite() {
		c.state.Phase = PhaseRepeating
		c.logger.Debugw("Looping cue",
			"cue", c.state.ActiveCueIndex,
			"seek", cue.Start+SeekEpsilon,
		)
		c.clock.Seek(cue.Start + SeekEpsilon)
		return
	}

	if c.state.RepeatsSoFar < int(c.state.RepeatTarget)-1 {
		c.state.RepeatsSoFar++
		c.state.Phase = PhaseRepeating
		c.logger.Debugw("Repeating cue",
			"cue", c.state.ActiveCueIndex,
			"repeat", c.state.RepeatsSoFar,
			"of", int(c.state.RepeatTarget)-1,
		)
		c.notifyRepeatState()
		c.clock.Seek(cue.Start + SeekEpsilon)
		return
	}

	c.state.Phase = PhaseTracking
}

// GoToCue jumps to the exact start of cue index and resumes playback if
// the user had it playing. Out-of-range indices are ignored.
func (c *Controller) GoToCue(index int) bool {
	if index < 0 || index >= len(c.cues) {
		return false
	}

	// the jump commits the cue itself, a synchronous tick must not
	prev := c.ticking
	c.ticking = true
	c.clock.Seek(c.cues[index].Start)
	c.ticking = prev

	c.state.ActiveCueIndex = index
	c.state.RepeatsSoFar = 0
	c.state.Phase = PhaseTracking
	c.notifyActiveCue()
	c.notifyRepeatState()

	if c.clock.Paused() && c.playing {
		c.clock.Play()
	}
	return true
}

// NextCue goes to the first cue starting after the current time, wrapping
// to the first cue when none is left.
func (c *Controller) NextCue() bool {
	if len(c.cues) == 0 {
		return false
	}
	next := subtitle.FindNextCueAfter(c.cues, c.clock.CurrentTime())
	if next == -1 {
		next = 0
	}
	return c.GoToCue(next)
}

func (c *Controller) PreviousCue() bool {
	return c.GoToCue(c.state.ActiveCueIndex - 1)
}

// SetRepeatTarget replaces the repeat target and restarts the count.
// Switching to Infinite with a cue active restarts that cue.
func (c *Controller) SetRepeatTarget(target RepeatTarget) bool {
	if !target.Valid() {
		c.logger.Warnw("Ignoring invalid repeat target", "target", int(target))
		return false
	}

	c.state.RepeatTarget = target
	c.state.RepeatsSoFar = 0
	c.notifyRepeatState()

	if target.IsInfinite() && c.state.ActiveCueIndex != -1 {
		c.clock.Seek(c.cues[c.state.ActiveCueIndex].Start + SeekEpsilon)
	}
	return true
}

// flips cue visibility; timing keeps running while hidden
func (c *Controller) ToggleVisible() bool {
	c.state.Visible = !c.state.Visible
	c.notifyActiveCue()
	return c.state.Visible
}

// Seek is an explicit user seek. It drops the held cue so the next tick
// resolves from the new position.
func (c *Controller) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	c.reset()
	c.notifyActiveCue()
	c.notifyRepeatState()
	c.clock.Seek(t)
}

func (c *Controller) SkipBy(delta float64) {
	c.Seek(c.clock.CurrentTime() + delta)
}

// toggles the clock and records the user's play intent
func (c *Controller) TogglePlayPause() bool {
	if c.clock.Paused() {
		c.clock.Play()
		c.playing = true
	} else {
		c.clock.Pause()
		c.playing = false
	}
	return c.playing
}

// called by the host when the media reaches its end
func (c *Controller) HandleEnded() {
	c.playing = false
}

// SetUserTranslation stores the user's own translation for a cue.
func (c *Controller) SetUserTranslation(index int, text string) bool {
	if index < 0 || index >= len(c.cues) {
		return false
	}
	c.cues[index].UserTranslation = text
	if index == c.state.ActiveCueIndex {
		c.notifyActiveCue()
	}
	return true
}

// Cues returns the loaded cue list. Callers must not modify it.
func (c *Controller) Cues() []subtitle.Cue {
	return c.cues
}

// active cue or nil
func (c *Controller) ActiveCue() *subtitle.Cue {
	if c.state.ActiveCueIndex < 0 || c.state.ActiveCueIndex >= len(c.cues) {
		return nil
	}
	cue := c.cues[c.state.ActiveCueIndex]
	return &cue
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Playing() bool {
	return c.playing
}

func (c *Controller) reset() {
	c.state.ActiveCueIndex = -1
	c.state.RepeatsSoFar = 0
	c.state.Phase = PhaseIdle
}

func (c *Controller) notifyActiveCue() {
	if !c.state.Visible {
		c.listener.ActiveCueChanged(nil)
		return
	}
	c.listener.ActiveCueChanged(c.ActiveCue())
}

func (c *Controller) notifyRepeatState() {
	c.listener.RepeatStateChanged(RepeatState{
		RepeatsSoFar: c.state.RepeatsSoFar,
		RepeatTarget: c.state.RepeatTarget,
	})
}
