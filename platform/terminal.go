package platform

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/arcade-core/event"
	"github.com/lixenwraith/arcade-core/input"
	"github.com/lixenwraith/arcade-core/loop"
)

// Terminal adapts a tcell screen to the main loop's event and timing
// contracts. A poll goroutine pumps tcell events into a buffered channel for
// non-blocking consumption and accumulates device state for the per-frame
// input snapshot.
type Terminal struct {
	screen tcell.Screen
	clock  *loop.SystemClock

	eventCh chan event.Event
	stopCh  chan struct{}
	doneCh  chan struct{}

	builderMu sync.Mutex
	builder   *input.Builder

	mu      sync.Mutex
	running bool
}

// New creates a terminal over a fresh tcell screen
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return NewWithScreen(screen), nil
}

// NewWithScreen creates a terminal over an initialized screen. Tests pass a
// tcell simulation screen here.
func NewWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen:  screen,
		clock:   loop.NewSystemClock(),
		eventCh: make(chan event.Event, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		builder: input.NewBuilder(),
	}
}

// Screen exposes the underlying tcell screen for drawing
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Clock returns the terminal's millisecond tick source
func (t *Terminal) Clock() *loop.SystemClock {
	return t.clock
}

// Start launches the event pump goroutine
func (t *Terminal) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	go t.pollLoop()
}

// Stop halts the event pump and restores the terminal
func (t *Terminal) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	close(t.stopCh)
	// Fini unblocks the pending PollEvent and restores the terminal
	t.screen.Fini()
	<-t.doneCh
	log.Debug("terminal stopped")
}

// pollLoop pumps tcell events until the screen closes
func (t *Terminal) pollLoop() {
	defer close(t.doneCh)

	defer func() {
		if r := recover(); r != nil {
			t.screen.Fini()
			panic(r)
		}
	}()

	for {
		tev := t.screen.PollEvent()
		if tev == nil {
			return
		}

		ev, ok := t.translate(tev)
		if !ok {
			continue
		}

		t.accumulate(ev)

		select {
		case t.eventCh <- ev:
		case <-t.stopCh:
			return
		}
	}
}

// translate maps a tcell event onto the platform-neutral model
func (t *Terminal) translate(tev tcell.Event) (event.Event, bool) {
	switch tev := tev.(type) {
	case *tcell.EventKey:
		if tev.Key() == tcell.KeyCtrlC {
			return event.Event{Type: event.Quit}, true
		}
		key, r := translateKey(tev)
		if key == event.KeyNone {
			return event.Event{}, false
		}
		return event.Event{
			Type:      event.Key,
			Key:       key,
			Rune:      r,
			Modifiers: translateMods(tev.Modifiers()),
		}, true

	case *tcell.EventMouse:
		x, y := tev.Position()
		return event.Event{
			Type:    event.Mouse,
			MouseX:  x,
			MouseY:  y,
			Buttons: translateButtons(tev.Buttons()),
		}, true

	case *tcell.EventResize:
		w, h := tev.Size()
		return event.Event{Type: event.Resize, Width: w, Height: h}, true

	case *tcell.EventInterrupt:
		return event.Event{Type: event.Quit}, true
	}

	return event.Event{}, false
}

// accumulate folds an event into the pending input snapshot
func (t *Terminal) accumulate(ev event.Event) {
	t.builderMu.Lock()
	defer t.builderMu.Unlock()

	switch ev.Type {
	case event.Key:
		t.builder.KeyPress(ev.Key, ev.Rune)
	case event.Mouse:
		t.builder.PointerMove(ev.MouseX, ev.MouseY, ev.Buttons)
	}
}

// PollEvent implements loop.EventSource with a non-blocking receive
func (t *Terminal) PollEvent() (event.Event, bool) {
	select {
	case ev := <-t.eventCh:
		return ev, true
	default:
		return event.Event{}, false
	}
}

// Snapshot implements loop.EventSource; takes and resets accumulated state
func (t *Terminal) Snapshot() *input.Snapshot {
	t.builderMu.Lock()
	defer t.builderMu.Unlock()
	return t.builder.Take()
}

func translateKey(tev *tcell.EventKey) (event.KeyCode, rune) {
	switch tev.Key() {
	case tcell.KeyRune:
		return event.KeyRune, tev.Rune()
	case tcell.KeyEscape:
		return event.KeyEscape, 0
	case tcell.KeyEnter:
		return event.KeyEnter, 0
	case tcell.KeyTab:
		return event.KeyTab, 0
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return event.KeyBackspace, 0
	case tcell.KeyDelete:
		return event.KeyDelete, 0
	case tcell.KeyUp:
		return event.KeyUp, 0
	case tcell.KeyDown:
		return event.KeyDown, 0
	case tcell.KeyLeft:
		return event.KeyLeft, 0
	case tcell.KeyRight:
		return event.KeyRight, 0
	case tcell.KeyHome:
		return event.KeyHome, 0
	case tcell.KeyEnd:
		return event.KeyEnd, 0
	case tcell.KeyPgUp:
		return event.KeyPgUp, 0
	case tcell.KeyPgDn:
		return event.KeyPgDn, 0
	}
	return event.KeyNone, 0
}

func translateMods(mods tcell.ModMask) event.Modifier {
	var out event.Modifier
	if mods&tcell.ModShift != 0 {
		out |= event.ModShift
	}
	if mods&tcell.ModCtrl != 0 {
		out |= event.ModCtrl
	}
	if mods&tcell.ModAlt != 0 {
		out |= event.ModAlt
	}
	return out
}

func translateButtons(buttons tcell.ButtonMask) event.Buttons {
	var out event.Buttons
	if buttons&tcell.Button1 != 0 {
		out |= event.ButtonPrimary
	}
	if buttons&tcell.Button2 != 0 {
		out |= event.ButtonSecondary
	}
	if buttons&tcell.Button3 != 0 {
		out |= event.ButtonMiddle
	}
	return out
}
