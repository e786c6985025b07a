package input

import (
	"github.com/lixenwraith/arcade-core/event"
)

// Snapshot is an immutable capture of input device state for one real frame.
// The same snapshot is shared by every logical tick run in that frame.
//
// Terminals report key presses but not releases, so a key is "down" when a
// press was observed since the previous snapshot was taken.
type Snapshot struct {
	keys  [32]uint8 // bitset indexed by event.KeyCode
	runes map[rune]struct{}

	pointerX int
	pointerY int
	buttons  event.Buttons
}

// Builder accumulates device state between snapshots. The platform feeds it
// from its event pump; Take produces the frame snapshot and resets the
// pressed sets while retaining pointer position.
type Builder struct {
	keys  [32]uint8
	runes map[rune]struct{}

	pointerX int
	pointerY int
	buttons  event.Buttons
}

// NewBuilder creates an empty input accumulator
func NewBuilder() *Builder {
	return &Builder{
		runes: make(map[rune]struct{}),
	}
}

// KeyPress records a key press
func (b *Builder) KeyPress(key event.KeyCode, r rune) {
	if key == event.KeyRune {
		b.runes[r] = struct{}{}
		return
	}
	b.keys[key>>3] |= 1 << (key & 7)
}

// PointerMove records the pointer position and button mask
func (b *Builder) PointerMove(x, y int, buttons event.Buttons) {
	b.pointerX = x
	b.pointerY = y
	b.buttons = buttons
}

// Take returns a snapshot of the accumulated state and resets the pressed
// sets. Pointer position and held buttons carry over.
func (b *Builder) Take() *Snapshot {
	snap := &Snapshot{
		keys:     b.keys,
		runes:    b.runes,
		pointerX: b.pointerX,
		pointerY: b.pointerY,
		buttons:  b.buttons,
	}

	b.keys = [32]uint8{}
	b.runes = make(map[rune]struct{})

	return snap
}

// KeyDown reports whether the key was pressed during the frame
func (s *Snapshot) KeyDown(key event.KeyCode) bool {
	return s.keys[key>>3]&(1<<(key&7)) != 0
}

// RuneDown reports whether the printable key was pressed during the frame
func (s *Snapshot) RuneDown(r rune) bool {
	_, ok := s.runes[r]
	return ok
}

// Pointer returns the pointer position
func (s *Snapshot) Pointer() (int, int) {
	return s.pointerX, s.pointerY
}

// Buttons returns the pressed pointer buttons
func (s *Snapshot) Buttons() event.Buttons {
	return s.buttons
}
