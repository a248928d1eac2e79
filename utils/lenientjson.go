package utils

import (
	"encoding/json"
	"fmt"
)

// DecodeLooseJSON decodes text produced by a non-deterministic generator.
// It tries a strict parse first, then falls back to the first balanced
// {...} block found in the text (models love to wrap JSON in prose or
// markdown fences). If both fail the raw text is unusable.
func DecodeLooseJSON(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	obj, ok := firstJSONObject(raw)
	if !ok {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("embedded JSON object does not parse: %w", err)
	}
	return nil
}

// firstJSONObject returns the first balanced top-level {...} span in s.
// Braces inside string literals are ignored.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
