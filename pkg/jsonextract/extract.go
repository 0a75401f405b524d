// Package jsonextract pulls the first JSON object out of free-form model output.
package jsonextract

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoObject is returned when the text contains no JSON object
var ErrNoObject = errors.New("no JSON object found in text")

const fence = "```"

// FirstObject returns the first JSON object in text. A ```json fence wins,
// then any other fence whose body holds an object, then the first balanced
// {...} anywhere in the text.
func FirstObject(text string) (string, bool) {
	if body, _, ok := fencedBody(text, fence+"json"); ok {
		if obj, ok := balancedObject(body); ok {
			return obj, true
		}
	}

	rest := text
	for {
		body, next, ok := fencedBody(rest, fence)
		if !ok {
			break
		}
		if obj, ok := balancedObject(body); ok {
			return obj, true
		}
		rest = rest[next:]
	}

	return balancedObject(text)
}

// Decode extracts the first object in text and unmarshals it into v
func Decode(text string, v any) error {
	obj, ok := FirstObject(text)
	if !ok {
		return ErrNoObject
	}
	return json.Unmarshal([]byte(obj), v)
}

// fencedBody returns the text between the opening marker and the next fence,
// plus the offset just past the closing fence. The info string on the
// opening line is skipped.
func fencedBody(text, open string) (string, int, bool) {
	start := strings.Index(text, open)
	if start < 0 {
		return "", 0, false
	}
	bodyStart := start + len(open)
	if nl := strings.IndexByte(text[bodyStart:], '\n'); nl >= 0 && !strings.Contains(text[bodyStart:bodyStart+nl], "{") {
		bodyStart += nl + 1
	}
	end := strings.Index(text[bodyStart:], fence)
	if end < 0 {
		return "", 0, false
	}
	return text[bodyStart : bodyStart+end], bodyStart + end + len(fence), true
}

// balancedObject finds the first '{' and returns the text up to its matching
// '}', ignoring braces inside string literals.
func balancedObject(text string) (string, bool) {
	for offset := 0; offset < len(text); {
		start := strings.IndexByte(text[offset:], '{')
		if start < 0 {
			return "", false
		}
		start += offset

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			c := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					i = len(text)
				}
			}
		}
		offset = start + 1
	}
	return "", false
}
