// Package envlist implements edits on separator-delimited list values such
// as PATH. The generated NSIS helper functions follow exactly these
// semantics; the Go versions are what tests and the planner reason with.
package envlist

import "strings"

// Append adds fragment as the last element. An empty value becomes the
// fragment alone.
func Append(value, fragment, sep string) string {
	if value == "" {
		return fragment
	}
	return value + sep + fragment
}

// Prepend adds fragment as the first element.
func Prepend(value, fragment, sep string) string {
	if value == "" {
		return fragment
	}
	return fragment + sep + value
}

// Contains reports whether fragment occurs as a whole element run.
func Contains(value, fragment, sep string) bool {
	return strings.Contains(sep+value+sep, sep+fragment+sep)
}

// RemoveLast removes the last occurrence of fragment together with the
// separator before it. It reports false and returns value unchanged when
// fragment is not present verbatim as whole elements.
func RemoveLast(value, fragment, sep string) (string, bool) {
	return remove(value, fragment, sep, strings.LastIndex)
}

// RemoveFirst removes the first occurrence of fragment together with the
// separator after it.
func RemoveFirst(value, fragment, sep string) (string, bool) {
	return remove(value, fragment, sep, strings.Index)
}

func remove(value, fragment, sep string, find func(s, substr string) int) (string, bool) {
	if fragment == "" || sep == "" {
		return value, false
	}
	haystack := sep + value + sep
	needle := sep + fragment + sep
	i := find(haystack, needle)
	if i < 0 {
		return value, false
	}
	// Keep one separator from the needle so neighbours stay delimited,
	// then drop the wrapping separators added above.
	joined := haystack[:i] + haystack[i+len(needle)-len(sep):]
	if joined == sep {
		return "", true
	}
	return joined[len(sep) : len(joined)-len(sep)], true
}
