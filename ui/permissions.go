package ui

// TogglePermission returns selected with perm removed when present and
// appended otherwise. selected is not modified.
func TogglePermission(selected []string, perm string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == perm {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, perm)
	}
	return out
}

func PermissionPlaceholder(selected []string, disabled bool) string {
	if !disabled {
		return "Select permissions"
	}
	if len(selected) == 0 {
		return "No permission"
	}
	return ""
}
