package permission

import "fmt"

// Action is an operation gated by a level.
type Action string

const (
	ActionView    Action = "view"
	ActionComment Action = "comment"
	ActionDecide  Action = "decide"
)

var requiredLevels = map[Action]Level{
	ActionView:    View,
	ActionComment: Comment,
	ActionDecide:  Decide,
}

// Required returns the minimum level an action needs.
func Required(a Action) (Level, error) {
	l, ok := requiredLevels[a]
	if !ok {
		return "", fmt.Errorf("permission: unknown action %q", string(a))
	}
	return l, nil
}

// Allows reports whether level permits the action. Unknown actions are denied.
func Allows(level Level, a Action) bool {
	need, err := Required(a)
	if err != nil {
		return false
	}
	return HasAtLeast(level, need)
}
