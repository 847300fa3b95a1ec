// Package excel reads uploaded CSV and XLSX spreadsheets into the raw row
// structure the column mapper consumes.
package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"maiveui/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// SheetData is the parsed upload: column names plus raw rows keyed by column
type SheetData struct {
	ColumnNames []string
	RawRows     []dataset.RawRow
	HasHeaders  bool
}

// DataReader parses an uploaded spreadsheet stream
type DataReader struct {
	filename string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the uploaded file; the extension picks
// the parser (.csv is CSV, everything else is handed to excelize).
func NewDataReader(filename string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filename)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filename: filename, fileType: fileType}
}

// Read parses the upload into structured sheet data
func (r *DataReader) Read(src io.Reader) (*SheetData, error) {
	log.Printf("[DataReader] Reading %s upload: %s", r.fileType, r.filename)
	start := time.Now()

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = readCSVRows(src)
	default:
		rows, err = readExcelRows(src)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] Parsed %d raw rows in %.2fms", len(rows), float64(time.Since(start).Nanoseconds())/1e6)

	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s contains no rows", r.filename)
	}
	return buildSheetData(rows), nil
}

func readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	return rows, nil
}

func readExcelRows(src io.Reader) ([][]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// buildSheetData applies the header heuristic and types each cell: numeric
// strings become float64, empty cells become nil, everything else stays a
// string.
func buildSheetData(rows [][]string) *SheetData {
	hasHeaders := detectHeaderRow(rows)

	var columns []string
	var dataRows [][]string
	if hasHeaders {
		columns = make([]string, len(rows[0]))
		for i, name := range rows[0] {
			columns[i] = strings.TrimSpace(name)
		}
		dataRows = rows[1:]
	} else {
		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}
		columns = make([]string, width)
		for i := range columns {
			columns[i] = fmt.Sprintf("column_%d", i+1)
		}
		dataRows = rows
	}

	rawRows := make([]dataset.RawRow, 0, len(dataRows))
	for _, row := range dataRows {
		rawRow := make(dataset.RawRow, len(columns))
		for i, column := range columns {
			if i >= len(row) {
				rawRow[column] = nil
				continue
			}
			rawRow[column] = typeCell(row[i])
		}
		rawRows = append(rawRows, rawRow)
	}

	return &SheetData{ColumnNames: columns, RawRows: rawRows, HasHeaders: hasHeaders}
}

func typeCell(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	if value, ok := dataset.ParseLocalizedNumber(trimmed); ok {
		return value
	}
	return trimmed
}

// detectHeaderRow checks whether row 1 is mostly non-numeric while row 2 is
// mostly numeric. Single-row files are assumed to carry headers.
func detectHeaderRow(rows [][]string) bool {
	if len(rows) < 2 {
		return true
	}
	return !mostlyNumeric(rows[0]) && mostlyNumeric(rows[1])
}

func mostlyNumeric(row []string) bool {
	nonEmpty, numeric := 0, 0
	for _, cell := range row {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if _, ok := dataset.ParseLocalizedNumber(trimmed); ok {
			numeric++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return numeric*2 > nonEmpty
}
