// Package permission implements the ordered per-user, per-document access levels.
package permission

import (
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/apperr"
)

// Level is an access level. Levels are totally ordered: each one implies
// every capability of the levels below it.
type Level string

const (
	None    Level = "NONE"
	View    Level = "VIEW"
	Comment Level = "COMMENT"
	Decide  Level = "DECIDE"
)

// ranks is the single source of ordering. A new level needs an entry here.
var ranks = map[Level]int{
	None:    0,
	View:    1,
	Comment: 2,
	Decide:  3,
}

// Levels returns every level in ascending order.
func Levels() []Level {
	return []Level{None, View, Comment, Decide}
}

// Rank returns the position of l in the order and whether l is known.
func (l Level) Rank() (int, bool) {
	r, ok := ranks[l]
	return r, ok
}

// Valid reports whether l is a recognized level.
func (l Level) Valid() bool {
	_, ok := ranks[l]
	return ok
}

func (l Level) String() string {
	return string(l)
}

// Validate implements validation.Validatable.
func (l Level) Validate() error {
	if l.Valid() {
		return nil
	}
	names := make([]string, 0, len(ranks))
	for _, known := range Levels() {
		names = append(names, string(known))
	}
	return validation.NewError("validation_permission_unknown",
		fmt.Sprintf("unrecognized permission level %q, want one of %s", string(l), strings.Join(names, ", ")))
}

// ParseLevel converts a wire token into a Level. Unknown tokens are rejected
// rather than coerced to a default.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.TrimSpace(s))
	if err := l.Validate(); err != nil {
		return "", apperr.Validation(validation.Errors{"permission": err})
	}
	return l, nil
}

// UnmarshalJSON rejects unknown levels.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apperr.Validation(validation.Errors{"permission": err})
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalYAML rejects unknown levels.
func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// HasAtLeast reports whether effective grants everything required grants.
// An unrecognized level on either side denies.
func HasAtLeast(effective, required Level) bool {
	have, ok := effective.Rank()
	if !ok {
		return false
	}
	need, ok := required.Rank()
	if !ok {
		return false
	}
	return have >= need
}
