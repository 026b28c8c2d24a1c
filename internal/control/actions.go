package control

// Action is the closed set of decoded control actions. Keeping it closed
// lets Apply dispatch exhaustively instead of resolving handler names at
// runtime.
type Action int

const (
	ActionUnknown Action = iota
	ActionVolumeUp
	ActionVolumeDown
	ActionMuteToggle
	ActionTopologyNext
	ActionTopologyPrev
	ActionSourceNext
	ActionSourcePrev
	ActionBalanceLeft
	ActionBalanceRight
	// The remaining actions are accepted but unbound in this controller;
	// they belong to external collaborators (track transport, navigation).
	ActionTrackPlay
	ActionTrackStop
	ActionTrackNext
	ActionTrackPrev
	ActionMenu
	ActionNavUp
	ActionNavDown
	ActionNavSelect
	ActionNavExit
)

// actionNames maps the wire vocabulary (the original remote's action names)
// to actions.
var actionNames = map[string]Action{
	"vol_up":      ActionVolumeUp,
	"vol_down":    ActionVolumeDown,
	"mute":        ActionMuteToggle,
	"config_next": ActionTopologyNext,
	"config_prev": ActionTopologyPrev,
	"source_next": ActionSourceNext,
	"source_prev": ActionSourcePrev,
	"nav_left":    ActionBalanceLeft,
	"nav_right":   ActionBalanceRight,
	"track_play":  ActionTrackPlay,
	"track_stop":  ActionTrackStop,
	"track_next":  ActionTrackNext,
	"track_prev":  ActionTrackPrev,
	"menu":        ActionMenu,
	"nav_up":      ActionNavUp,
	"nav_down":    ActionNavDown,
	"nav_select":  ActionNavSelect,
	"nav_exit":    ActionNavExit,
}

// ParseAction decodes an action name from the wire vocabulary.
func ParseAction(name string) (Action, bool) {
	a, ok := actionNames[name]
	return a, ok
}

// String returns the wire name of the action.
func (a Action) String() string {
	for name, action := range actionNames {
		if action == a {
			return name
		}
	}
	return "unknown"
}

// Bound reports whether the action drives a state transition in this
// controller.
func (a Action) Bound() bool {
	switch a {
	case ActionVolumeUp, ActionVolumeDown, ActionMuteToggle,
		ActionTopologyNext, ActionTopologyPrev,
		ActionSourceNext, ActionSourcePrev,
		ActionBalanceLeft, ActionBalanceRight:
		return true
	}
	return false
}
