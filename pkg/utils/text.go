package utils

import "strings"

// Truncate shortens s to at most limit runes, appending "..." when cut
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// FirstNonEmpty returns the first element of values with non-blank content,
// or fallback.
func FirstNonEmpty(values []string, fallback string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fallback
}

// UniqueStrings keeps the first occurrence of each value, preserving order
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ContainsAny reports whether s contains any of the substrings
func ContainsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NonNil turns a nil slice into an empty one so it encodes as []
func NonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
