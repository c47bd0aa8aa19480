package ui

import (
	"strings"

	"github.com/sfi2k7/hubconsole/api"
)

// DisplayName is the name shown in the user menu.
func DisplayName(u api.User) string {
	if u.FirstName != "" || u.LastName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u.Username
}
