package dataset

import (
	"encoding/json"
	"math"
	"time"

	"maiveui/domain/core"
)

// RawRow maps original column names to raw cell values as parsed from the
// uploaded spreadsheet (string, float64 or nil). Immutable once parsed.
type RawRow = map[string]any

// Role identifies one of the semantic columns MAIVE needs
type Role string

const (
	RoleEffect  Role = "effect"
	RoleSE      Role = "se"
	RoleNObs    Role = "nObs"
	RoleStudyID Role = "studyId"
)

// ColumnMapping assigns raw spreadsheet columns to the semantic roles.
// Effect, SE and NObs are required; StudyID is optional (empty when unmapped).
type ColumnMapping struct {
	Effect  string `json:"effect"`
	SE      string `json:"se"`
	NObs    string `json:"nObs"`
	StudyID string `json:"studyId,omitempty"`
}

// HasStudyID reports whether an optional study-id column is mapped
func (m ColumnMapping) HasStudyID() bool {
	return m.StudyID != ""
}

// IsComplete reports whether all required roles are mapped
func (m ColumnMapping) IsComplete() bool {
	return m.Effect != "" && m.SE != "" && m.NObs != ""
}

// Identity is the mapping produced when the data already uses the normalized
// column names, so re-normalization is a no-op.
func Identity() ColumnMapping {
	return ColumnMapping{Effect: "effect", SE: "se", NObs: "n_obs", StudyID: "study_id"}
}

// NormalizedRow is a RawRow projected through a ColumnMapping. Numeric fields
// are nil when the source cell was empty and NaN when it was non-empty but
// unparsable, so validators can distinguish missing from malformed.
type NormalizedRow struct {
	Effect  *float64 `json:"effect"`
	SE      *float64 `json:"se"`
	NObs    *float64 `json:"n_obs"`
	StudyID any      `json:"study_id,omitempty"`
}

// HasMissing reports whether any required field is absent
func (r NormalizedRow) HasMissing() bool {
	return r.Effect == nil || r.SE == nil || r.NObs == nil
}

type normalizedRowJSON struct {
	Effect  any `json:"effect"`
	SE      any `json:"se"`
	NObs    any `json:"n_obs"`
	StudyID any `json:"study_id,omitempty"`
}

// MarshalJSON encodes NaN (malformed) cells as the string "NaN", since plain
// JSON has no NaN literal and sessions must round-trip through storage.
func (r NormalizedRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(normalizedRowJSON{
		Effect:  encodeNumeric(r.Effect),
		SE:      encodeNumeric(r.SE),
		NObs:    encodeNumeric(r.NObs),
		StudyID: r.StudyID,
	})
}

// UnmarshalJSON accepts numbers, null, and the "NaN" marker
func (r *NormalizedRow) UnmarshalJSON(data []byte) error {
	var raw normalizedRowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Effect = decodeNumeric(raw.Effect)
	r.SE = decodeNumeric(raw.SE)
	r.NObs = decodeNumeric(raw.NObs)
	r.StudyID = raw.StudyID
	return nil
}

func encodeNumeric(v *float64) any {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) {
		return "NaN"
	}
	return *v
}

func decodeNumeric(v any) *float64 {
	switch value := v.(type) {
	case float64:
		return &value
	case string:
		nan := math.NaN()
		return &nan
	default:
		return nil
	}
}

// UploadedData is the session-scoped record for one uploaded dataset. It is
// created at upload time and enriched as the user walks the wizard.
type UploadedData struct {
	ID          core.DatasetID  `json:"id"`
	Filename    string          `json:"filename"`
	ColumnNames []string        `json:"column_names"`
	RawRows     []RawRow        `json:"raw_rows"`
	Rows        []NormalizedRow `json:"rows,omitempty"`
	Mapping     *ColumnMapping  `json:"mapping,omitempty"`
	UploadedAt  time.Time       `json:"uploaded_at"`
}

// DataInfo summarizes an uploaded dataset for display and run metadata
type DataInfo struct {
	Filename                   string  `json:"filename"`
	RowCount                   int     `json:"row_count"`
	HasStudyID                 bool    `json:"has_study_id"`
	StudyCount                 int     `json:"study_count,omitempty"`
	MedianObservationsPerStudy float64 `json:"median_observations_per_study,omitempty"`
}
