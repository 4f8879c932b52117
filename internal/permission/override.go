package permission

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
)

// Override assigns a level to one user on one document.
//
// UserEmail, DocumentTitle and ProjectName are display copies. They never
// take part in a decision.
type Override struct {
	UserID        string    `json:"userId" yaml:"user_id"`
	DocumentID    string    `json:"documentId" yaml:"document_id"`
	Permission    Level     `json:"permission" yaml:"permission"`
	UserEmail     string    `json:"userEmail,omitempty" yaml:"user_email,omitempty"`
	DocumentTitle string    `json:"documentTitle,omitempty" yaml:"document_title,omitempty"`
	ProjectName   string    `json:"projectName,omitempty" yaml:"project_name,omitempty"`
	CreatedAt     time.Time `json:"createdAt" yaml:"-"`
}

// Validate implements validation.Validatable.
func (o Override) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.UserID, validation.Required),
		validation.Field(&o.DocumentID, validation.Required),
		validation.Field(&o.Permission, validation.Required),
	)
	return apperr.Validation(err)
}

// Key returns the lookup key of the override.
func (o Override) Key() Key {
	return Key{UserID: o.UserID, DocumentID: o.DocumentID}
}

// Key identifies a (user, document) pair.
type Key struct {
	UserID     string `json:"userId"`
	DocumentID string `json:"documentId"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.UserID, k.DocumentID)
}

// EffectiveLevel resolves the level governing userID on documentID.
//
// Without a matching override the caller's defaultLevel applies. Duplicate
// overrides for the same pair resolve to the newest CreatedAt, and to the
// later entry on a tie. The resolved level must be recognized.
func EffectiveLevel(userID, documentID string, overrides []Override, defaultLevel Level) (Level, error) {
	key := Key{UserID: userID, DocumentID: documentID}

	var found *Override
	for i := range overrides {
		o := &overrides[i]
		if o.Key() != key {
			continue
		}
		if found == nil || !o.CreatedAt.Before(found.CreatedAt) {
			found = o
		}
	}

	level := defaultLevel
	if found != nil {
		level = found.Permission
	}
	if err := level.Validate(); err != nil {
		return "", apperr.Validation(validation.Errors{"permission": err})
	}
	return level, nil
}
