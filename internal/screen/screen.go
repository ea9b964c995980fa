package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/ui/layout"
)

// Screen is one page of the application.
type Screen interface {
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen show a status on the right of the header.
type StatusProvider interface {
	Status() string
}

// InputCapturer is implemented by screens that sometimes need Esc and
// printable keys for themselves, e.g. while a text field is focused.
type InputCapturer interface {
	CapturingInput() bool
}
