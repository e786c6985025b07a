package loop

import (
	"errors"
	"testing"

	"github.com/lixenwraith/arcade-core/event"
	"github.com/lixenwraith/arcade-core/input"
)

// scriptedSource feeds a fixed event queue and fresh snapshots
type scriptedSource struct {
	queue     []event.Event
	snapshots int
}

func (s *scriptedSource) PollEvent() (event.Event, bool) {
	if len(s.queue) == 0 {
		return event.Event{}, false
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

func (s *scriptedSource) Snapshot() *input.Snapshot {
	s.snapshots++
	return input.NewBuilder().Take()
}

// mockGame records lifecycle calls and delegates behavior to hooks
type mockGame struct {
	initCalls  int
	eventCalls int
	stepCalls  int
	drawCalls  int
	quitCalls  int

	stepsThisFrame int
	stepsPerFrame  []int
	frameSnaps     []*input.Snapshot

	initErr  error
	quitErr  error
	stepFn   func(call int) (StepResult, error)
	drawFn   func(frame int) error
	handleFn func(ev event.Event) (bool, error)
}

func (g *mockGame) Init() error {
	g.initCalls++
	return g.initErr
}

func (g *mockGame) HandleEvent(ev event.Event) (bool, error) {
	g.eventCalls++
	if g.handleFn != nil {
		return g.handleFn(ev)
	}
	return false, nil
}

func (g *mockGame) Step(in *input.Snapshot) (StepResult, error) {
	g.stepCalls++
	g.stepsThisFrame++
	g.frameSnaps = append(g.frameSnaps, in)
	if g.stepFn != nil {
		return g.stepFn(g.stepCalls)
	}
	return Slowdown(1), nil
}

func (g *mockGame) Draw() error {
	g.drawCalls++
	g.stepsPerFrame = append(g.stepsPerFrame, g.stepsThisFrame)
	g.stepsThisFrame = 0
	if g.drawFn != nil {
		return g.drawFn(g.drawCalls)
	}
	return nil
}

func (g *mockGame) Quit() error {
	g.quitCalls++
	return g.quitErr
}

// doneAfter terminates the game on the nth step
func doneAfter(n int) func(int) (StepResult, error) {
	return func(call int) (StepResult, error) {
		if call >= n {
			return Done(), nil
		}
		return Slowdown(1), nil
	}
}

func TestRunLifecycleOrder(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{stepFn: doneAfter(3)}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	if g.initCalls != 1 {
		t.Errorf("Expected 1 init, got %d", g.initCalls)
	}
	if g.quitCalls != 1 {
		t.Errorf("Expected 1 quit, got %d", g.quitCalls)
	}
	if g.stepCalls != 3 {
		t.Errorf("Expected 3 steps, got %d", g.stepCalls)
	}
	if g.drawCalls != 3 {
		t.Errorf("Expected 3 draws, got %d", g.drawCalls)
	}
}

func TestSingleTickPerFrameWhenOnPace(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{stepFn: doneAfter(5)}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	for i, steps := range g.stepsPerFrame {
		if steps != 1 {
			t.Errorf("Expected 1 tick in frame %d, got %d", i, steps)
		}
	}
}

func TestDelayWaitsUntilNextTickDue(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{stepFn: doneAfter(2)}
	// Advance 10ms during draw so only 6ms of the 16ms interval remain
	g.drawFn = func(frame int) error {
		if frame == 1 {
			clock.Advance(10)
		}
		return nil
	}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	delays := clock.Delays()
	if len(delays) != 2 {
		t.Fatalf("Expected 2 delays, got %d", len(delays))
	}
	if delays[0] != 16 {
		t.Errorf("Expected first delay of a full interval, got %d", delays[0])
	}
	if delays[1] != 6 {
		t.Errorf("Expected second delay of the 6ms remainder, got %d", delays[1])
	}
}

func TestBacklogRunsMultipleTicks(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{stepFn: doneAfter(4)}
	// 50ms stall during the first draw: floor(50/16) = 3 ticks next frame
	g.drawFn = func(frame int) error {
		if frame == 1 {
			clock.Advance(50)
		}
		return nil
	}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	if len(g.stepsPerFrame) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(g.stepsPerFrame))
	}
	if g.stepsPerFrame[1] != 3 {
		t.Errorf("Expected 3 catch-up ticks, got %d", g.stepsPerFrame[1])
	}
}

func TestBacklogClampedToMaxSkipFrames(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{stepFn: doneAfter(7)}
	// A 500ms stall would owe 31 ticks; only MaxSkipFrames may run and the
	// backlog is dropped
	g.drawFn = func(frame int) error {
		if frame == 1 {
			clock.Advance(500)
		}
		return nil
	}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	if len(g.stepsPerFrame) < 3 {
		t.Fatalf("Expected at least 3 frames, got %d", len(g.stepsPerFrame))
	}
	if g.stepsPerFrame[1] != DefaultMaxSkipFrames {
		t.Errorf("Expected %d clamped ticks, got %d", DefaultMaxSkipFrames, g.stepsPerFrame[1])
	}
	// No catch-up debt carried forward after the resync
	if g.stepsPerFrame[2] != 1 {
		t.Errorf("Expected 1 tick after backlog drop, got %d", g.stepsPerFrame[2])
	}
}

func TestSnapshotSharedAcrossTicksInFrame(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{stepFn: doneAfter(4)}
	g.drawFn = func(frame int) error {
		if frame == 1 {
			clock.Advance(50)
		}
		return nil
	}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	if src.snapshots != g.drawCalls {
		t.Errorf("Expected one snapshot per frame, got %d for %d frames", src.snapshots, g.drawCalls)
	}
	// The 3 catch-up ticks of frame 2 share one snapshot
	if g.frameSnaps[1] != g.frameSnaps[2] || g.frameSnaps[2] != g.frameSnaps[3] {
		t.Error("Expected all ticks of one frame to share a snapshot")
	}
	if g.frameSnaps[0] == g.frameSnaps[1] {
		t.Error("Expected a fresh snapshot per frame")
	}
}

func TestDoneMidFrameStillRunsScheduledTicks(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{}
	g.stepFn = func(call int) (StepResult, error) {
		if call == 2 {
			return Done(), nil
		}
		return Slowdown(1), nil
	}
	g.drawFn = func(frame int) error {
		if frame == 1 {
			clock.Advance(50)
		}
		return nil
	}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	// Frame 2 scheduled 3 ticks; Done on the first of them must not cancel
	// the remaining two
	if g.stepCalls != 4 {
		t.Errorf("Expected 4 total steps, got %d", g.stepCalls)
	}
	if g.drawCalls != 2 {
		t.Errorf("Expected 2 draws, got %d", g.drawCalls)
	}
	if g.quitCalls != 1 {
		t.Errorf("Expected 1 quit, got %d", g.quitCalls)
	}
}

func TestQuitEventTerminatesWithoutHandleEvent(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{queue: []event.Event{{Type: event.Quit}}}
	g := &mockGame{}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	if g.eventCalls != 0 {
		t.Errorf("Expected quit event to bypass HandleEvent, got %d calls", g.eventCalls)
	}
	if g.drawCalls != 1 {
		t.Errorf("Expected 1 draw in terminal frame, got %d", g.drawCalls)
	}
	if g.quitCalls != 1 {
		t.Errorf("Expected quit exactly once, got %d", g.quitCalls)
	}
}

func TestEventForwardedToGame(t *testing.T) {
	clock := NewMockClock(0)
	keyEv := event.Event{Type: event.Key, Key: event.KeyRune, Rune: 'x'}
	src := &scriptedSource{queue: []event.Event{keyEv}}
	g := &mockGame{stepFn: doneAfter(2)}

	var got event.Event
	g.handleFn = func(ev event.Event) (bool, error) {
		got = ev
		return false, nil
	}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	if g.eventCalls != 1 {
		t.Errorf("Expected 1 handled event, got %d", g.eventCalls)
	}
	if got.Rune != 'x' || got.Key != event.KeyRune {
		t.Errorf("Expected key event forwarded intact, got %+v", got)
	}
}

func TestHandleEventExitRequest(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{queue: []event.Event{{Type: event.Key, Key: event.KeyEscape}}}
	g := &mockGame{}
	g.handleFn = func(ev event.Event) (bool, error) {
		return true, nil
	}

	if err := New(clock, src, DefaultConfig()).Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	// The terminal frame still steps and draws before the loop exits
	if g.stepCalls != 1 {
		t.Errorf("Expected 1 step in terminal frame, got %d", g.stepCalls)
	}
	if g.drawCalls != 1 {
		t.Errorf("Expected 1 draw in terminal frame, got %d", g.drawCalls)
	}
	if g.quitCalls != 1 {
		t.Errorf("Expected quit exactly once, got %d", g.quitCalls)
	}
}

func TestSlowdownMovesIntervalTowardClampedTarget(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{}
	g.stepFn = func(call int) (StepResult, error) {
		if call >= 40 {
			return Done(), nil
		}
		return Slowdown(2.0), nil
	}

	l := New(clock, src, DefaultConfig())

	var intervals []float64
	g.drawFn = func(frame int) error {
		intervals = append(intervals, l.Interval())
		return nil
	}

	if err := l.Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	target := slowdownMaxRatio * DefaultBaseInterval
	final := l.Interval()
	if final <= DefaultBaseInterval {
		t.Errorf("Expected interval above base, got %v", final)
	}
	if final > target {
		t.Errorf("Expected interval to never overshoot %v, got %v", target, final)
	}
	for i := 1; i < len(intervals); i++ {
		if intervals[i] < intervals[i-1] {
			t.Errorf("Expected monotonic approach to target, got %v after %v", intervals[i], intervals[i-1])
		}
		if intervals[i] > target {
			t.Errorf("Expected interval %v to stay below %v", intervals[i], target)
		}
	}
}

func TestIntervalRecoversTowardBase(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{}
	g.stepFn = func(call int) (StepResult, error) {
		switch {
		case call >= 60:
			return Done(), nil
		case call < 20:
			return Slowdown(2.0), nil
		default:
			return Slowdown(1.0), nil
		}
	}

	l := New(clock, src, DefaultConfig())

	var intervals []float64
	g.drawFn = func(frame int) error {
		intervals = append(intervals, l.Interval())
		return nil
	}

	if err := l.Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}

	peak := intervals[19]
	if peak <= DefaultBaseInterval {
		t.Fatalf("Expected interval to rise during slowdown, got %v", peak)
	}
	for i := 21; i < len(intervals); i++ {
		if intervals[i] > intervals[i-1] {
			t.Errorf("Expected recovery toward base, got %v after %v", intervals[i], intervals[i-1])
		}
	}
	if final := l.Interval(); final >= peak {
		t.Errorf("Expected interval below peak %v, got %v", peak, final)
	}
}

func TestDisablePacingFreezesInterval(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	g := &mockGame{}
	g.stepFn = func(call int) (StepResult, error) {
		if call >= 10 {
			return Done(), nil
		}
		return Slowdown(2.0), nil
	}

	cfg := DefaultConfig()
	cfg.DisablePacing = true
	l := New(clock, src, cfg)

	if err := l.Run(g); err != nil {
		t.Fatalf("Expected clean run, got %v", err)
	}
	if l.Interval() != DefaultBaseInterval {
		t.Errorf("Expected interval fixed at base, got %v", l.Interval())
	}
}

func TestInitErrorSkipsEverythingElse(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	sentinel := errors.New("boot failure")
	g := &mockGame{initErr: sentinel}

	err := New(clock, src, DefaultConfig()).Run(g)

	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Stage != StageInit {
		t.Fatalf("Expected init stage error, got %v", err)
	}
	if !errors.Is(err, sentinel) {
		t.Error("Expected wrapped sentinel error")
	}
	if g.stepCalls != 0 || g.drawCalls != 0 || g.quitCalls != 0 {
		t.Error("Expected no lifecycle calls after init failure")
	}
}

func TestStepErrorPropagatesWithoutQuit(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	sentinel := errors.New("tick failure")
	g := &mockGame{}
	g.stepFn = func(call int) (StepResult, error) {
		return StepResult{}, sentinel
	}

	err := New(clock, src, DefaultConfig()).Run(g)

	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Stage != StageStep {
		t.Fatalf("Expected step stage error, got %v", err)
	}
	if !errors.Is(err, sentinel) {
		t.Error("Expected wrapped sentinel error")
	}
	if g.quitCalls != 0 {
		t.Errorf("Expected no quit after step failure, got %d", g.quitCalls)
	}
}

func TestDrawErrorPropagates(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{}
	sentinel := errors.New("render failure")
	g := &mockGame{}
	g.drawFn = func(frame int) error {
		return sentinel
	}

	err := New(clock, src, DefaultConfig()).Run(g)

	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Stage != StageDraw {
		t.Fatalf("Expected draw stage error, got %v", err)
	}
	if g.quitCalls != 0 {
		t.Errorf("Expected no quit after draw failure, got %d", g.quitCalls)
	}
}

func TestQuitErrorTagged(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{queue: []event.Event{{Type: event.Quit}}}
	sentinel := errors.New("teardown failure")
	g := &mockGame{quitErr: sentinel}

	err := New(clock, src, DefaultConfig()).Run(g)

	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Stage != StageQuit {
		t.Fatalf("Expected quit stage error, got %v", err)
	}
}

func TestHandleEventErrorPropagates(t *testing.T) {
	clock := NewMockClock(0)
	src := &scriptedSource{queue: []event.Event{{Type: event.Key, Key: event.KeyEnter}}}
	sentinel := errors.New("event failure")
	g := &mockGame{}
	g.handleFn = func(ev event.Event) (bool, error) {
		return false, sentinel
	}

	err := New(clock, src, DefaultConfig()).Run(g)

	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Stage != StageHandleEvent {
		t.Fatalf("Expected handle-event stage error, got %v", err)
	}
	if g.stepCalls != 0 {
		t.Errorf("Expected no steps after event failure, got %d", g.stepCalls)
	}
	if g.quitCalls != 0 {
		t.Errorf("Expected no quit after event failure, got %d", g.quitCalls)
	}
}

func TestStageStrings(t *testing.T) {
	stages := map[Stage]string{
		StageInit:        "failed to initialize the game",
		StageHandleEvent: "failed to handle an event",
		StageStep:        "failed to step the game",
		StageDraw:        "failed to draw a frame",
		StageQuit:        "failed to quit the game",
	}
	for stage, want := range stages {
		if stage.String() != want {
			t.Errorf("Expected %q, got %q", want, stage.String())
		}
	}
}
