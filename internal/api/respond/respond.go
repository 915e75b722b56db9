// Package respond writes the API response envelope. Every payload, success
// or failure, goes through here so handlers never shape JSON by hand.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Both data and error are always present so clients can rely on the
// shape; the inactive side is an explicit null.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, Data: data})
}

type Option func(*ErrorBody)

func WithMessage(message string) Option {
	return func(body *ErrorBody) {
		body.Message = message
	}
}

func WithDetails(details any) Option {
	return func(body *ErrorBody) {
		body.Details = details
	}
}

// Error writes a failure envelope and logs the underlying error through
// the request-scoped logger; 5xx at error level, 4xx at warn.
func Error(w http.ResponseWriter, r *http.Request, status int, code string, err error, opts ...Option) {
	body := ErrorBody{Code: code, Message: defaultMessages[code]}
	for _, opt := range opts {
		opt(&body)
	}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}

	if r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("code", code).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg("request failed")
	}

	write(w, status, envelope{Success: false, Error: &body})
}

func write(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
