package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// ErrorDetail is one entry of the hub error envelope.
type ErrorDetail struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Source struct {
		Parameter string `json:"parameter"`
	} `json:"source"`
}

// Error is returned for every response with a 4xx or 5xx status.
type Error struct {
	StatusCode int
	Errors     []ErrorDetail `json:"errors"`
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		switch {
		case d.Detail != "" && d.Source.Parameter != "":
			msgs = append(msgs, d.Source.Parameter+": "+d.Detail)
		case d.Detail != "":
			msgs = append(msgs, d.Detail)
		case d.Title != "":
			msgs = append(msgs, d.Title)
		}
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), strings.Join(msgs, "; "))
}

// FieldErrors maps request parameters to their error detail. Details
// without a source parameter are left out.
func (e *Error) FieldErrors() map[string]string {
	out := map[string]string{}
	for _, d := range e.Errors {
		if d.Source.Parameter == "" {
			continue
		}
		if prev, ok := out[d.Source.Parameter]; ok {
			out[d.Source.Parameter] = prev + " " + d.Detail
			continue
		}
		out[d.Source.Parameter] = d.Detail
	}
	return out
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func checkError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	apiErr := &Error{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrapf(apiErr, "reading error body: %v", err)
	}
	if jerr := json.Unmarshal(body, apiErr); jerr != nil || len(apiErr.Errors) == 0 {
		apiErr.Errors = nil
		if text := strings.TrimSpace(string(body)); text != "" {
			apiErr.Errors = []ErrorDetail{{Status: fmt.Sprint(resp.StatusCode), Detail: text}}
		}
	}
	return apiErr
}
