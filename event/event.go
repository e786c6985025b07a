package event

// Type distinguishes input event categories
type Type uint8

const (
	// None marks the zero Event
	None Type = iota
	// Quit is a host request to terminate (interrupt, window close)
	Quit
	// Key is a keyboard press
	Key
	// Mouse is a pointer motion or button change
	Mouse
	// Resize reports new display dimensions
	Resize
)

// KeyCode identifies a non-printable key
type KeyCode uint16

const (
	KeyNone KeyCode = iota
	KeyRune         // Printable key; see Event.Rune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
)

// Modifier is a bitmask of held modifier keys
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// Buttons is a bitmask of pressed pointer buttons
type Buttons uint8

const (
	ButtonPrimary Buttons = 1 << iota
	ButtonSecondary
	ButtonMiddle
)

// Event represents a single platform input event
type Event struct {
	Type      Type
	Key       KeyCode
	Rune      rune
	Modifiers Modifier

	// Mouse event fields
	MouseX  int
	MouseY  int
	Buttons Buttons

	// Resize event fields
	Width  int
	Height int
}

// IsQuit reports whether the event is a host quit request
func (e Event) IsQuit() bool {
	return e.Type == Quit
}
