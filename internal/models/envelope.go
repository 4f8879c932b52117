package models

// Envelope statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorDetail is the error payload of a non-success envelope.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ErrorDetail) Error() string {
	return e.Code + ": " + e.Message
}

// Envelope wraps every payload exchanged with the remote service.
type Envelope[T any] struct {
	Status string       `json:"status"`
	Data   T            `json:"data"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// OK reports whether the envelope represents success.
func (e Envelope[T]) OK() bool {
	return e.Status == StatusOK && e.Error == nil
}

// Success wraps data in a success envelope.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{Status: StatusOK, Data: data}
}

// Failure builds an error envelope.
func Failure(code, message string, details any) Envelope[any] {
	return Envelope[any]{
		Status: StatusError,
		Error:  &ErrorDetail{Code: code, Message: message, Details: details},
	}
}
