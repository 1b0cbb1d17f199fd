package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/well-escape/internal/core"
)

// holdTicks is how long a walk or jump key stays pressed after its last key
// event. Terminals report no key releases, so held intents are kept alive by
// key repeat and expire on their own.
const holdTicks = 9

// GameKeyMap defines the in-game key bindings.
type GameKeyMap struct {
	Left       key.Binding
	Right      key.Binding
	Jump       key.Binding
	Sabotage   key.Binding
	Pause      key.Binding
	Restart    key.Binding
	Screenshot key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Jump, k.Sabotage, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Jump},
		{k.Sabotage, k.Pause, k.Restart},
		{k.Screenshot, k.Quit},
	}
}

// DefaultGameKeyMap returns default key bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "right"),
		),
		Jump: key.NewBinding(
			key.WithKeys(" ", "up", "w", "k"),
			key.WithHelp("space/↑", "jump"),
		),
		Sabotage: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "sabotage"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^s", "screenshot"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys GameKeyMap
}

// NewKeyMapper creates a new key mapper with the given bindings.
func NewKeyMapper(keys GameKeyMap) *KeyMapper {
	return &KeyMapper{keys: keys}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch {
	case key.Matches(msg, km.keys.Quit):
		return core.ActionQuit, true
	case key.Matches(msg, km.keys.Left):
		return core.ActionLeft, false
	case key.Matches(msg, km.keys.Right):
		return core.ActionRight, false
	case key.Matches(msg, km.keys.Jump):
		return core.ActionJump, false
	case key.Matches(msg, km.keys.Sabotage):
		return core.ActionSabotage, false
	case key.Matches(msg, km.keys.Pause):
		return core.ActionPause, false
	case key.Matches(msg, km.keys.Restart):
		return core.ActionRestart, false
	}
	return core.ActionNone, false
}

// heldInput turns discrete key events into held intents plus one-tick edge
// actions.
type heldInput struct {
	left, right, jump int
	edges             core.InputFrame
}

// press records an action from a key event.
func (h *heldInput) press(a core.Action) {
	switch a {
	case core.ActionLeft:
		h.left, h.right = holdTicks, 0
	case core.ActionRight:
		h.right, h.left = holdTicks, 0
	case core.ActionJump:
		h.jump = holdTicks
	case core.ActionNone, core.ActionQuit:
	default:
		h.edges.Set(a)
	}
}

// frame returns the input for the next tick and ages held intents.
func (h *heldInput) frame() core.InputFrame {
	f := h.edges.Clone()
	h.edges.Clear()
	if h.left > 0 {
		f.Set(core.ActionLeft)
		h.left--
	}
	if h.right > 0 {
		f.Set(core.ActionRight)
		h.right--
	}
	if h.jump > 0 {
		f.Set(core.ActionJump)
		h.jump--
	}
	return f
}

// release drops every held intent.
func (h *heldInput) release() {
	h.left, h.right, h.jump = 0, 0, 0
	h.edges.Clear()
}
