package loop

import (
	"github.com/lixenwraith/arcade-core/event"
	"github.com/lixenwraith/arcade-core/input"
)

// Game is the simulation contract driven by the main loop. Init and Quit run
// exactly once, bracketing an unbounded sequence of frames; within a frame
// the loop forwards at most one event, runs Step once per logical tick, and
// calls Draw exactly once regardless of how many ticks ran.
type Game interface {
	// Init performs one-time setup before the first frame
	Init() error

	// HandleEvent processes one input event. Returning true requests exit.
	HandleEvent(ev event.Event) (bool, error)

	// Step advances the simulation one logical tick with the frame's input
	Step(in *input.Snapshot) (StepResult, error)

	// Draw renders the current state; called once per real frame
	Draw() error

	// Quit runs cleanup after the loop exits cleanly
	Quit() error
}

// StepResult is the outcome of one logical tick: either the game is done, or
// it continues with an accumulated slowdown ratio
type StepResult struct {
	done     bool
	slowdown float64
}

// Slowdown continues the game, requesting the given extra time per tick.
// A ratio above 1 reports the simulation is running behind nominal pace.
func Slowdown(ratio float64) StepResult {
	return StepResult{slowdown: ratio}
}

// Done terminates the game
func Done() StepResult {
	return StepResult{done: true}
}

// Merge folds two tick results: Done absorbs everything else, and slowdown
// ratios sum. The operation is associative and commutative.
func (r StepResult) Merge(other StepResult) StepResult {
	if r.done || other.done {
		return StepResult{done: true}
	}
	return StepResult{slowdown: r.slowdown + other.slowdown}
}

// IsDone reports whether the result terminates the game
func (r StepResult) IsDone() bool {
	return r.done
}

// SlowdownRatio returns the accumulated slowdown; zero when done
func (r StepResult) SlowdownRatio() float64 {
	if r.done {
		return 0
	}
	return r.slowdown
}
