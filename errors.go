package hubconsole

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// HTTPError is an error with the status code it is reported with.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ErrorResponse is the JSON body of every error the console writes itself.
// It has the shape of the hub API error envelope so the UI reads both the
// same way.
type ErrorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}

type ErrorDetail struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// writeError reports err as JSON. Errors that are not an *HTTPError are
// internal server errors.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	detail := ""

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		detail = httpErr.Message
		if httpErr.Err != nil {
			detail += ": " + httpErr.Err.Error()
		}
	}

	res := ErrorResponse{Errors: []ErrorDetail{{
		Status: strconv.Itoa(code),
		Title:  http.StatusText(code),
		Detail: detail,
	}}}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(res)
}

func errorLevel(code int, log *zap.Logger) func(string, ...zap.Field) {
	if code >= http.StatusInternalServerError {
		return log.Error
	}
	return log.Debug
}
