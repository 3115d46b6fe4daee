package service

import (
	"encoding/json"
	"errors"
)

var (
	ErrNoStructureFound   = errors.New("no JSON object found in model output")
	ErrMalformedStructure = errors.New("model output contains malformed JSON")
	ErrSchemaViolation    = errors.New("model output JSON violates expected schema")
)

// ExtractJSONObject returns the first balanced top-level {...} region in text.
// Model output routinely wraps the JSON in prose, so everything before the
// first '{' and after its matching '}' is ignored. Braces inside JSON strings
// do not count toward balancing.
func ExtractJSONObject(text string) (string, error) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start = i
			break
		}
	}
	if start == -1 {
		return "", ErrNoStructureFound
	}

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
				return text[start : i+1], nil
			}
		}
	}

	// Opening brace without a matching close.
	return "", ErrMalformedStructure
}

// ParseStructured extracts the embedded JSON object from text and decodes it
// into v. "Not found" and "found but invalid" are distinct failures.
func ParseStructured(text string, v any) error {
	region, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(region), v); err != nil {
		return ErrMalformedStructure
	}
	return nil
}

// validScore reports whether a dimension score is inside the rubric range.
func validScore(score float64) bool {
	return score >= 0 && score <= 100
}
