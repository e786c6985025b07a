package loop

import "fmt"

// Stage identifies the lifecycle callback that produced an error
type Stage uint8

const (
	StageInit Stage = iota
	StageHandleEvent
	StageStep
	StageDraw
	StageQuit
)

// String returns the failure description for the stage
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "failed to initialize the game"
	case StageHandleEvent:
		return "failed to handle an event"
	case StageStep:
		return "failed to step the game"
	case StageDraw:
		return "failed to draw a frame"
	case StageQuit:
		return "failed to quit the game"
	default:
		return "unknown game stage"
	}
}

// Error tags a game error with the lifecycle stage that raised it. The loop
// does not interpret or retry game errors; it annotates and re-raises them.
type Error struct {
	Stage Stage
	Err   error
}

// Error implements error
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying game error
func (e *Error) Unwrap() error {
	return e.Err
}
