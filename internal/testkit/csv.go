package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"maiveui/domain/dataset"
)

// WriteCSV renders generated raw rows as a CSV stream with a header row, in
// the declared column order.
func WriteCSV(w io.Writer, columns []string, rows []dataset.RawRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, column := range columns {
			record[i] = formatCell(row[column])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
