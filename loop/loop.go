package loop

import (
	"math"

	"github.com/lixenwraith/arcade-core/event"
	"github.com/lixenwraith/arcade-core/input"
)

// Nominal pacing and adaptation constants
const (
	// DefaultBaseInterval is the nominal tick length in milliseconds (~60 Hz)
	DefaultBaseInterval = 16.0
	// DefaultMaxSkipFrames caps logical ticks run to catch up in one frame
	DefaultMaxSkipFrames = 5

	slowdownStartRatio = 1.0
	slowdownMaxRatio   = 1.75
	slowdownGain       = 0.1
	recoveryGain       = 0.08
)

// EventSource supplies pending events and per-frame input snapshots
type EventSource interface {
	// PollEvent returns the next pending event without blocking
	PollEvent() (event.Event, bool)

	// Snapshot captures current input device state; called once per frame
	Snapshot() *input.Snapshot
}

// Config controls frame pacing
type Config struct {
	// BaseInterval is the nominal milliseconds per logical tick
	BaseInterval float64 `toml:"base_interval"`

	// MaxSkipFrames is the most logical ticks run in one real frame before
	// the backlog is dropped
	MaxSkipFrames int `toml:"max_skip_frames"`

	// AccelerateFrame re-samples the clock after the pacing delay instead of
	// advancing by exactly one interval
	AccelerateFrame bool `toml:"accelerate_frame"`

	// DisablePacing turns off interval adaptation
	DisablePacing bool `toml:"disable_pacing"`
}

// DefaultConfig returns the nominal pacing configuration
func DefaultConfig() Config {
	return Config{
		BaseInterval:  DefaultBaseInterval,
		MaxSkipFrames: DefaultMaxSkipFrames,
	}
}

// Loop drives a Game through its lifecycle at an adaptive fixed timestep.
// It is single-threaded: one goroutine owns the clock, the event source and
// the game for the duration of Run.
type Loop struct {
	clock  Clock
	events EventSource
	cfg    Config

	interval float64
}

// New creates a main loop over the given timing and event sources.
// Zero config fields fall back to defaults.
func New(clock Clock, events EventSource, cfg Config) *Loop {
	if cfg.BaseInterval <= 0 {
		cfg.BaseInterval = DefaultBaseInterval
	}
	if cfg.MaxSkipFrames <= 0 {
		cfg.MaxSkipFrames = DefaultMaxSkipFrames
	}

	return &Loop{
		clock:    clock,
		events:   events,
		cfg:      cfg,
		interval: cfg.BaseInterval,
	}
}

// Interval returns the current adapted milliseconds-per-tick target
func (l *Loop) Interval() float64 {
	return l.interval
}

// Run drives the game to completion: Init once, then frames of
// poll-event / step xN / draw until a quit event or a Done step result,
// then Quit once. Any lifecycle error is returned as a stage-tagged
// *Error; Quit is not attempted after an earlier stage has failed.
func (l *Loop) Run(g Game) error {
	if err := g.Init(); err != nil {
		return &Error{Stage: StageInit, Err: err}
	}

	l.interval = l.cfg.BaseInterval
	prevTick := l.clock.Ticks()

	for {
		isDone := false

		if ev, ok := l.events.PollEvent(); ok {
			if ev.IsQuit() {
				isDone = true
			} else {
				exit, err := g.HandleEvent(ev)
				if err != nil {
					return &Error{Stage: StageHandleEvent, Err: err}
				}
				isDone = exit
			}
		}

		nowTick := l.clock.Ticks()
		frame := int(float64(nowTick-prevTick) / l.interval)

		var frames int
		switch {
		case frame <= 0:
			// Ahead of schedule: block until the next tick is due
			intervalMS := int64(l.interval)
			if wait := prevTick + intervalMS - nowTick; wait > 0 {
				l.clock.Delay(wait)
			}
			if l.cfg.AccelerateFrame {
				prevTick = l.clock.Ticks()
			} else {
				prevTick += intervalMS
			}
			frames = 1
		case frame > l.cfg.MaxSkipFrames:
			// Too far behind (debugger pause, stall): drop the backlog
			// rather than spiral
			prevTick = nowTick
			frames = l.cfg.MaxSkipFrames
		default:
			prevTick = nowTick
			frames = frame
		}

		in := l.events.Snapshot()

		// Done absorbs but does not cut the fold short: ticks already
		// scheduled for this frame still run
		result := Slowdown(0)
		for i := 0; i < frames; i++ {
			r, err := g.Step(in)
			if err != nil {
				return &Error{Stage: StageStep, Err: err}
			}
			result = result.Merge(r)
		}
		if result.IsDone() {
			isDone = true
		}

		if err := g.Draw(); err != nil {
			return &Error{Stage: StageDraw, Err: err}
		}

		if !l.cfg.DisablePacing {
			l.interval = l.nextInterval(result.SlowdownRatio() / float64(frames))
		}

		if isDone {
			break
		}
	}

	if err := g.Quit(); err != nil {
		return &Error{Stage: StageQuit, Err: err}
	}

	return nil
}

// nextInterval applies exponential smoothing toward the slowdown target, or
// back toward the base interval when the game keeps pace
func (l *Loop) nextInterval(slowdown float64) float64 {
	if slowdown > slowdownStartRatio {
		ratio := math.Min(slowdown/slowdownStartRatio, slowdownMaxRatio)
		return l.interval + (ratio*l.cfg.BaseInterval-l.interval)*slowdownGain
	}
	return l.interval + (l.cfg.BaseInterval-l.interval)*recoveryGain
}
