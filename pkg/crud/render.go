package crud

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error           int                 `json:"error"`
	Message         string              `json:"message,omitempty"`
	Field           string              `json:"field,omitempty"`
	ValidationError map[string][]string `json:"validation_error,omitempty"`
}

// DeleteResponse is the JSON body of a successful delete.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// WriteJSON renders v with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err. Server errors are logged with the request logger
// and their message is not exposed.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	body := ErrorResponse{Error: status}

	var e *Error
	if errors.As(err, &e) {
		body.Field = e.Field
		body.ValidationError = e.Fields
	}

	if status >= http.StatusInternalServerError {
		LoggerFrom(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		body.Message = http.StatusText(status)
	} else {
		body.Message = err.Error()
	}

	WriteJSON(w, status, body)
}
