// Package annotation builds comment requests and unwraps comment envelopes.
// Everything here is a pure function of its arguments.
package annotation

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

var errBlank = validation.NewError("validation_blank", "cannot be blank")

// notBlank rejects strings that are empty after trimming whitespace.
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
})

// BuildCommentRequest assembles a transport-ready comment request.
//
// The marker is attached only when one is supplied, so the encoded request
// has no "marker" key otherwise. The request carries exactly fileVersion.
func BuildCommentRequest(fileID string, fileVersion int, text string, marker *models.Marker) (models.CommentRequest, error) {
	req := models.CommentRequest{
		FileID:      fileID,
		FileVersion: fileVersion,
		Comment:     text,
	}
	if marker != nil {
		m := *marker
		req.Marker = &m
	}

	if err := ValidateRequest(req); err != nil {
		return models.CommentRequest{}, err
	}
	return req, nil
}

// ValidateRequest checks a request decoded from the wire.
func ValidateRequest(req models.CommentRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.FileID, validation.Required),
		validation.Field(&req.FileVersion, validation.Min(0)),
		validation.Field(&req.Comment, notBlank),
		validation.Field(&req.Marker, validation.By(validateMarker)),
	)
	return apperr.Validation(err)
}

func validateMarker(value interface{}) error {
	m, _ := value.(*models.Marker)
	if m == nil {
		return nil
	}
	return validation.ValidateStruct(m,
		validation.Field(&m.PageNumber, validation.Required, validation.Min(1)),
	)
}

// ErrPageOutOfRange is returned when a marker points past the last page of a version.
var ErrPageOutOfRange = errors.New("page number out of range")

// CheckMarkerPage verifies the marker page exists in the targeted version.
// A nil marker always passes.
func CheckMarkerPage(m *models.Marker, v models.DocumentVersion) error {
	if m == nil || v.HasPage(m.PageNumber) {
		return nil
	}
	return apperr.Validation(validation.Errors{
		"marker": validation.Errors{
			"pageNumber": fmt.Errorf("%w: %s has %d pages", ErrPageOutOfRange, v.Ref(), v.PageCount),
		},
	})
}

// ExtractComment returns the data payload of env unchanged.
//
// It does not look at Status or Error; callers check env.OK() first. On an
// error envelope the result is whatever Data holds, usually nil.
func ExtractComment(env models.Envelope[*models.Comment]) *models.Comment {
	return env.Data
}
