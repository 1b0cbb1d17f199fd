package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone     Action = iota
	ActionLeft            // A, Left arrow - walk left (held intent)
	ActionRight           // D, Right arrow - walk right (held intent)
	ActionJump            // Space, W, Up - jump (held intent)
	ActionSabotage        // X - trigger agent sabotage (edge)
	ActionPause           // P, Escape - pause/unpause (edge)
	ActionRestart         // R - restart after game over
	ActionQuit            // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionJump:
		return "Jump"
	case ActionSabotage:
		return "Sabotage"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame represents the input state for a single simulation tick.
// Held intents (left, right, jump) are present for every tick the key is
// held; edge actions (sabotage, pause) are present on one tick only.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}

// Intent is the per-tick movement snapshot the physics layer consumes.
type Intent struct {
	Left  bool
	Right bool
	Jump  bool
}

// Intent extracts the held movement intents from the frame.
func (f InputFrame) Intent() Intent {
	return Intent{
		Left:  f.Has(ActionLeft),
		Right: f.Has(ActionRight),
		Jump:  f.Has(ActionJump),
	}
}
