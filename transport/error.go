package transport

import (
	"encoding/json"
	"errors"
	"net/http"
)

// DefaultErrorMessage is used when the backend supplied no message at all.
const DefaultErrorMessage = "An error occurred"

// Error is the uniform failure shape surfaced to every caller of the
// pipeline, regardless of whether the failure came from the backend or from
// the network layer.
type Error struct {
	Message string
	Errors  []string
	Status  int
	Data    json.RawMessage
}

func (e *Error) Error() string {
	return e.Message
}

// AsError unwraps err into the pipeline's uniform error shape.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsStatus reports whether err is a pipeline error with the given HTTP status.
func IsStatus(err error, status int) bool {
	te, ok := AsError(err)
	return ok && te.Status == status
}

// failureEnvelope is the identity service's error body. Every field is
// optional; normalization fills the gaps.
type failureEnvelope struct {
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

// normalizeResponse converts a non-2xx backend response into *Error.
func normalizeResponse(status int, body []byte) *Error {
	var env failureEnvelope
	_ = json.Unmarshal(body, &env)

	e := &Error{
		Message: env.Message,
		Errors:  env.Errors,
		Status:  status,
		Data:    env.Data,
	}
	if e.Message == "" {
		e.Message = DefaultErrorMessage
	}
	if e.Errors == nil {
		e.Errors = []string{}
	}
	return e
}

// normalizeNetwork converts a transport-level failure (no response at all)
// into *Error with the documented defaults.
func normalizeNetwork(err error) *Error {
	return &Error{
		Message: DefaultErrorMessage,
		Errors:  []string{err.Error()},
		Status:  http.StatusInternalServerError,
	}
}
