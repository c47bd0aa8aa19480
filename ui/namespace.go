package ui

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/api"
)

var namespaceName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateNamespaceName returns the field errors of a new namespace name,
// nil when it is acceptable.
func ValidateNamespaceName(name string) map[string]string {
	var msg string
	switch {
	case name == "":
		msg = "Please, provide the namespace name"
	case !namespaceName.MatchString(name):
		msg = "Name can only contain letters and numbers"
	case len(name) <= 2:
		msg = "Name must be longer than 2 characters"
	case strings.HasPrefix(name, "_"):
		msg = "Name cannot begin with '_'"
	default:
		return nil
	}
	return map[string]string{"name": msg}
}

// MergeFieldErrors adds the per-field errors carried by err to fields.
// Server messages win over local ones. Errors that are not API errors
// are reported under "__nofield".
func MergeFieldErrors(fields map[string]string, err error) map[string]string {
	out := map[string]string{}
	for k, v := range fields {
		out[k] = v
	}
	if err == nil {
		return out
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		out["__nofield"] = err.Error()
		return out
	}
	fe := apiErr.FieldErrors()
	if len(fe) == 0 {
		out["__nofield"] = apiErr.Error()
	}
	for k, v := range fe {
		out[k] = v
	}
	return out
}
