package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDataReader_CSVWithHeaders(t *testing.T) {
	csv := "effect,se,n_obs\n0.5,0.1,100\nn/a,0.2,80\n,0.3,60\n"
	sheet, err := NewDataReader("data.csv").Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if !sheet.HasHeaders {
		t.Error("header row should be detected")
	}
	if len(sheet.ColumnNames) != 3 || sheet.ColumnNames[0] != "effect" {
		t.Errorf("columns = %v", sheet.ColumnNames)
	}
	if len(sheet.RawRows) != 3 {
		t.Fatalf("expected 3 data rows, got %d", len(sheet.RawRows))
	}

	if sheet.RawRows[0]["effect"] != 0.5 {
		t.Errorf("numeric cell should be typed: %v", sheet.RawRows[0]["effect"])
	}
	if _, isString := sheet.RawRows[1]["effect"].(string); !isString {
		t.Errorf("unparsable cell should stay a string: %v", sheet.RawRows[1]["effect"])
	}
	if sheet.RawRows[2]["effect"] != nil {
		t.Errorf("empty cell should be nil: %v", sheet.RawRows[2]["effect"])
	}
}

func TestDataReader_CSVWithoutHeaders(t *testing.T) {
	csv := "0.5,0.1,100\n0.3,0.2,80\n"
	sheet, err := NewDataReader("data.csv").Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if sheet.HasHeaders {
		t.Error("all-numeric first row must not be treated as a header")
	}
	if len(sheet.ColumnNames) != 3 || sheet.ColumnNames[0] != "column_1" {
		t.Errorf("columns = %v", sheet.ColumnNames)
	}
	if len(sheet.RawRows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(sheet.RawRows))
	}
}

func TestDataReader_RaggedCSVRows(t *testing.T) {
	csv := "effect,se,n_obs\n0.5,0.1\n"
	sheet, err := NewDataReader("data.csv").Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if sheet.RawRows[0]["n_obs"] != nil {
		t.Errorf("short rows should pad with nil, got %v", sheet.RawRows[0]["n_obs"])
	}
}

func TestDataReader_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"effect", "se", "n_obs"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{0.5, 0.1, 100})
	_ = f.SetSheetRow(sheet, "A3", &[]any{-0.2, 0.15, 80})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	data, err := NewDataReader("data.xlsx").Read(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !data.HasHeaders || len(data.RawRows) != 2 {
		t.Fatalf("unexpected sheet shape: headers=%v rows=%d", data.HasHeaders, len(data.RawRows))
	}
	if data.RawRows[1]["effect"] != -0.2 {
		t.Errorf("cell = %v", data.RawRows[1]["effect"])
	}
}

func TestDataReader_EmptyFile(t *testing.T) {
	if _, err := NewDataReader("data.csv").Read(strings.NewReader("")); err == nil {
		t.Error("empty files must be rejected")
	}
}
