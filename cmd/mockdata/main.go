package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"maiveui/internal/testkit"
)

func main() {
	out := flag.String("out", "meta_analysis_demo.csv", "output file path")
	studies := flag.Int("studies", 40, "number of studies")
	estimates := flag.Int("estimates", 5, "estimates per study")
	effect := flag.Float64("effect", 0.3, "true underlying effect")
	selection := flag.Float64("selection", 0.4, "selective reporting strength (0..1)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	noStudyIDs := flag.Bool("no-study-ids", false, "omit the study_id column")
	malformedEvery := flag.Int("malformed-every", 0, "inject a malformed se cell every N cells (0 = none)")
	missingEvery := flag.Int("missing-every", 0, "inject a missing effect cell every N cells (0 = none)")
	flag.Parse()

	if *studies <= 0 || *estimates <= 0 {
		fmt.Fprintln(os.Stderr, "studies and estimates must be > 0")
		os.Exit(2)
	}

	cfg := testkit.DefaultMetaConfig()
	cfg.StudyCount = *studies
	cfg.EstimatesPerStudy = *estimates
	cfg.TrueEffect = *effect
	cfg.SelectionStrength = *selection
	cfg.Seed = *seed
	cfg.IncludeStudyIDs = !*noStudyIDs
	cfg.MalformedCellEvery = *malformedEvery
	cfg.MissingCellEvery = *missingEvery

	gen := testkit.NewMetaDataGenerator(cfg)
	rows := gen.Generate()
	columns := gen.ColumnNames()

	var err error
	switch strings.ToLower(filepath.Ext(*out)) {
	case ".xlsx":
		err = writeXLSX(*out, columns, rows)
	default:
		err = writeCSV(*out, columns, rows)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to write output:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s\n", len(rows), *out)
}

func writeCSV(path string, columns []string, rows []map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return testkit.WriteCSV(f, columns, rows)
}

func writeXLSX(path string, columns []string, rows []map[string]any) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := make([]any, len(columns))
		for j, column := range columns {
			values[j] = row[column]
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
