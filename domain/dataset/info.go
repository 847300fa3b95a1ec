package dataset

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summarize computes display metadata for a normalized dataset: row count,
// study-id presence, distinct study count and the median number of
// observations per study.
func Summarize(filename string, rows []NormalizedRow, mapping ColumnMapping) DataInfo {
	info := DataInfo{
		Filename:   filename,
		RowCount:   len(rows),
		HasStudyID: mapping.HasStudyID(),
	}

	if !info.HasStudyID {
		return info
	}

	perStudy := make(map[string]int)
	for _, row := range rows {
		if row.StudyID == nil {
			continue
		}
		perStudy[fmt.Sprint(row.StudyID)]++
	}
	info.StudyCount = len(perStudy)

	if len(perStudy) == 0 {
		return info
	}

	counts := make([]float64, 0, len(perStudy))
	for _, n := range perStudy {
		counts = append(counts, float64(n))
	}
	if median, err := stats.Median(counts); err == nil {
		info.MedianObservationsPerStudy = median
	}
	return info
}

// DistinctStudyCount returns the number of distinct non-null study ids
func DistinctStudyCount(rows []NormalizedRow) int {
	seen := make(map[string]bool)
	for _, row := range rows {
		if row.StudyID == nil {
			continue
		}
		seen[fmt.Sprint(row.StudyID)] = true
	}
	return len(seen)
}
