package gemini

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/edgard/nanabot/internal/sheets"
)

// ExtractJSONObject returns the first top-level brace-balanced JSON object
// in s. Models occasionally wrap their JSON in prose or markdown fences, so
// the scanner tracks brace nesting and string state rather than trusting the
// whole response.
func ExtractJSONObject(s string) (string, bool) {
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
			// Quotes before the first brace belong to surrounding prose.
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseClassification reads a model response into a ParsedMessage, coercing
// every field that fails its constraint instead of failing the whole parse.
func ParseClassification(raw string) (sheets.ParsedMessage, error) {
	jsonText, ok := ExtractJSONObject(raw)
	if !ok {
		return sheets.ParsedMessage{}, fmt.Errorf("no JSON object found in response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(jsonText), &data); err != nil {
		return sheets.ParsedMessage{}, fmt.Errorf("invalid JSON in response: %w", err)
	}
	return coerceParsed(data), nil
}

// coerceParsed applies per-field validation: an unknown category becomes
// other, an implausible confidence becomes 0.5, numeric fields accept numbers
// or numeric strings and are dropped otherwise, and intensity outside 1..5 is
// dropped.
func coerceParsed(data map[string]any) sheets.ParsedMessage {
	pm := sheets.ParsedMessage{}

	pm.Category, _ = sheets.ParseCategory(asString(data["category"]))

	if conf, ok := asFloat(data["confidence"]); ok && conf >= 0 && conf <= 1 {
		pm.Confidence = conf
	} else {
		pm.Confidence = 0.5
	}

	pm.Item = asString(data["item"])
	if v, ok := asFloat(data["qty_value"]); ok {
		pm.QtyValue = &v
	}
	pm.QtyUnit = asString(data["qty_unit"])
	pm.Method = asString(data["method"])
	pm.StartTime = asString(data["start_time"])
	pm.EndTime = asString(data["end_time"])
	if v, ok := asInt(data["duration_min"]); ok {
		pm.DurationMin = &v
	}
	if v, ok := asInt(data["intensity_1_5"]); ok && v >= 1 && v <= 5 {
		pm.Intensity = &v
	}
	pm.Description = asString(data["description"])
	pm.Notes = asString(data["notes"])
	return pm
}

// Fallback is the classification used when every attempt failed: a
// low-confidence catch-all that preserves the original text.
func Fallback(text string) sheets.ParsedMessage {
	return sheets.ParsedMessage{
		Category:    sheets.CategoryOther,
		Confidence:  0.3,
		Description: text,
		Notes:       text,
	}
}

func asString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
