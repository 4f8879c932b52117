package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Envelope error codes.
const (
	codeBadRequest = "bad_request"
	codeValidation = "validation_error"
	codeNotFound   = "not_found"
	codeForbidden  = "forbidden"
	codeConflict   = "conflict"
	codeUnauth     = "unauthorized"
	codeInternal   = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeData[T any](w http.ResponseWriter, status int, data T) {
	writeJSON(w, status, models.Success(data))
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, models.Failure(code, message, details))
}

// writeServiceError maps a service error onto an error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		var details any
		if fields, ok := ve.Err.(validation.Errors); ok {
			details = fields
		}
		writeError(w, http.StatusBadRequest, codeValidation, ve.Error(), details)
	case errors.Is(err, apperr.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, "insufficient permission", nil)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "not found", nil)
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeError(w, http.StatusConflict, codeConflict, "already exists", nil)
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, "concurrent modification", nil)
	default:
		slog.Error(op+" failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error", nil)
	}
}

// decodeBody decodes a JSON request body capped at 1 MiB.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if apperr.IsValidation(err) {
			writeServiceError(w, r, "decode", err)
			return false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body", nil)
		return false
	}
	return true
}
