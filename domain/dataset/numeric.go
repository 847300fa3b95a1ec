package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ParseLocalizedNumber parses a numeric string that may use either `.` or `,`
// as the decimal separator, with the other character acting as a thousands
// separator. The rule: when both characters occur, the right-most occurrence
// is the decimal separator; when only one occurs, a single occurrence is the
// decimal separator and repeated occurrences are thousands separators.
func ParseLocalizedNumber(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	if cleaned == "" {
		return 0, false
	}

	lastDot := strings.LastIndexByte(cleaned, '.')
	lastComma := strings.LastIndexByte(cleaned, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseNumericCell converts a trimmed non-empty cell value to a float.
// Unparsable input yields NaN, never an error, so the validator can report
// malformed values without losing the row.
func parseNumericCell(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if parsed, ok := ParseLocalizedNumber(v); ok {
			return parsed
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}
