package forms

import "strings"

func SplitName(name string) []string {
	var path []string
	for {
		component, suffix, _ := strings.Cut(name, "[")
		if component != "" {
			path = append(path, component)
		}
		if suffix == "" {
			break
		}
		component, name, _ = strings.Cut(suffix, "]")
		if component != "" {
			path = append(path, component)
		}
	}
	return path
}

// ValueKey is the key of a field in value and error maps: the name without a
// trailing "[]".
func ValueKey(name string) string {
	return strings.TrimSuffix(name, "[]")
}

// IsMultiName reports whether name ends with the "[]" multi-value suffix.
func IsMultiName(name string) bool {
	return strings.HasSuffix(name, "[]")
}

// MultiName returns name with the "[]" multi-value suffix, added only once.
func MultiName(name string) string {
	return ValueKey(name) + "[]"
}

// fieldID derives a default id: "user[emails][]" becomes "user-emails".
func fieldID(name string) string {
	return strings.Join(SplitName(ValueKey(name)), "-")
}
