package dataset

import (
	"regexp"
	"strings"
)

// rolePatterns lists, per semantic role, the ordered case-insensitive name
// patterns tried during auto-detection. Patterns run against trimmed,
// lower-cased column names; pattern order encodes priority.
var rolePatterns = map[Role][]*regexp.Regexp{
	RoleEffect: {
		regexp.MustCompile(`^effect$`),
		regexp.MustCompile(`^effect[_\s-]?size$`),
		regexp.MustCompile(`^estimate$`),
		regexp.MustCompile(`coef`),
		regexp.MustCompile(`beta`),
	},
	RoleSE: {
		regexp.MustCompile(`^se$`),
		regexp.MustCompile(`standard[_\s-]?error`),
		regexp.MustCompile(`^stderr$`),
		regexp.MustCompile(`^std[_\s-]?err`),
	},
	RoleNObs: {
		regexp.MustCompile(`^n$`),
		regexp.MustCompile(`^n[_\s-]?obs$`),
		regexp.MustCompile(`^n[_\s-]?size$`),
		regexp.MustCompile(`sample`),
		regexp.MustCompile(`participants`),
	},
	RoleStudyID: {
		regexp.MustCompile(`study`),
		regexp.MustCompile(`id$`),
	},
}

// roleOrder fixes detection priority: a column claimed by an earlier role is
// never reconsidered for a later one.
var roleOrder = []Role{RoleEffect, RoleSE, RoleNObs, RoleStudyID}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AutoDetect guesses a ColumnMapping from raw column names. Each role claims
// the first not-yet-claimed column matching one of its patterns; ties break
// by input column order. If required roles remain unmapped and the sheet has
// exactly 3 or 4 columns, the mapping falls back to strict positional
// assignment (0=effect, 1=se, 2=n_obs, 3=study_id).
func AutoDetect(columns []string) ColumnMapping {
	// Claims are tracked by position, not name; sheets may carry duplicate
	// column names.
	claimed := make(map[int]bool, len(columns))
	assigned := make(map[Role]string, len(roleOrder))

	for _, role := range roleOrder {
	patterns:
		for _, pattern := range rolePatterns[role] {
			for i, column := range columns {
				if claimed[i] {
					continue
				}
				if pattern.MatchString(normalizeColumnName(column)) {
					assigned[role] = column
					claimed[i] = true
					break patterns
				}
			}
		}
	}

	mapping := ColumnMapping{
		Effect:  assigned[RoleEffect],
		SE:      assigned[RoleSE],
		NObs:    assigned[RoleNObs],
		StudyID: assigned[RoleStudyID],
	}

	if !mapping.IsComplete() && (len(columns) == 3 || len(columns) == 4) {
		mapping = ColumnMapping{Effect: columns[0], SE: columns[1], NObs: columns[2]}
		if len(columns) == 4 {
			mapping.StudyID = columns[3]
		}
	}

	return mapping
}

// cellValue looks up a mapped column in a raw row. Strings are trimmed and
// empty strings become nil, so "missing" is uniform across cell types.
func cellValue(row RawRow, column string) any {
	if column == "" {
		return nil
	}
	value, ok := row[column]
	if !ok || value == nil {
		return nil
	}
	if s, isString := value.(string); isString {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return nil
		}
		return trimmed
	}
	return value
}

func numericField(row RawRow, column string) *float64 {
	value := cellValue(row, column)
	if value == nil {
		return nil
	}
	parsed := parseNumericCell(value)
	return &parsed
}

// NormalizeRow projects one raw row through the mapping. Missing cells come
// out nil, malformed numeric cells come out NaN; the study id is copied as-is
// (trimmed when a string).
func NormalizeRow(row RawRow, mapping ColumnMapping) NormalizedRow {
	normalized := NormalizedRow{
		Effect: numericField(row, mapping.Effect),
		SE:     numericField(row, mapping.SE),
		NObs:   numericField(row, mapping.NObs),
	}
	if mapping.HasStudyID() {
		normalized.StudyID = cellValue(row, mapping.StudyID)
	}
	return normalized
}

// Normalize projects all raw rows through the mapping. Pure: never mutates
// its inputs and never fails; unmappable roles surface as nil fields that the
// validator reports.
func Normalize(rows []RawRow, mapping ColumnMapping) []NormalizedRow {
	normalized := make([]NormalizedRow, len(rows))
	for i, row := range rows {
		normalized[i] = NormalizeRow(row, mapping)
	}
	return normalized
}
