package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"maiveui/domain/core"
	"maiveui/domain/dataset"
	"maiveui/domain/results"
	"maiveui/internal/errors"
	"maiveui/ports"
)

// ExportFormat selects the download encoding
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// Export is a rendered download ready to stream to the client
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders run results and adjusted datasets as downloads
type ExportService struct {
	store ports.SessionStore
}

// NewExportService creates the service over the session store
func NewExportService(store ports.SessionStore) *ExportService {
	return &ExportService{store: store}
}

// ExportResults renders the visible result rows of the session's latest run.
// CSV gets a flat label/value table; XLSX gets a results sheet and a data
// sheet with the instrumented standard errors appended, built concurrently.
func (s *ExportService) ExportResults(ctx context.Context, id core.DatasetID, format ExportFormat) (*Export, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Results == nil {
		return nil, errors.InvalidInput("run the model before exporting results")
	}

	meta := results.RunMeta{Duration: session.RunTook, Timestamp: session.RunAt}
	if session.Data.Mapping != nil {
		info := dataset.Summarize(session.Data.Filename, session.Data.Rows, *session.Data.Mapping)
		meta.DataInfo = &info
	}
	rows := results.VisibleRows(results.Project(*session.Results, session.Parameters, &meta))

	switch format {
	case FormatCSV:
		return renderResultsCSV(session, rows)
	case FormatXLSX:
		return renderResultsXLSX(ctx, session, rows)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
	}
}

func renderResultsCSV(session *ports.Session, rows []results.Row) (*Export, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"section", "label", "value"})
	for _, row := range rows {
		_ = w.Write([]string{string(row.Section), row.Label, row.Value})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to render CSV export")
	}
	return &Export{
		Filename:    exportName(session, "maive-results", "csv"),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}

func renderResultsXLSX(ctx context.Context, session *ports.Session, rows []results.Row) (*Export, error) {
	f := excelize.NewFile()
	defer f.Close()

	const resultsSheet = "Results"
	const dataSheet = "Data"
	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return nil, errors.Wrap(err, "failed to prepare workbook")
	}
	if _, err := f.NewSheet(dataSheet); err != nil {
		return nil, errors.Wrap(err, "failed to prepare workbook")
	}

	// The two sheets are independent; excelize is safe for concurrent writes
	// to distinct sheets.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return writeResultsSheet(f, resultsSheet, rows) })
	g.Go(func() error { return writeDataSheet(f, dataSheet, session) })
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to render XLSX export")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to write workbook")
	}
	return &Export{
		Filename:    exportName(session, "maive-results", "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}

func writeResultsSheet(f *excelize.File, sheet string, rows []results.Row) error {
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Section", "Label", "Value"}); err != nil {
		return err
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{string(row.Section), row.Label, row.Value}); err != nil {
			return err
		}
	}
	return nil
}

// writeDataSheet reproduces the analyzed rows with the estimator's
// instrumented standard errors appended as an extra column, aligned by row.
func writeDataSheet(f *excelize.File, sheet string, session *ports.Session) error {
	header := []any{"effect", "se", "n_obs"}
	hasStudy := session.Data.Mapping != nil && session.Data.Mapping.HasStudyID()
	if hasStudy {
		header = append(header, "study_id")
	}
	instrumented := session.Results.SEInstrumented
	if len(instrumented) > 0 {
		header = append(header, "se_instrumented")
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range session.Data.Rows {
		values := []any{numericCell(row.Effect), numericCell(row.SE), numericCell(row.NObs)}
		if hasStudy {
			values = append(values, row.StudyID)
		}
		if len(instrumented) > 0 {
			if i < len(instrumented) {
				values = append(values, instrumented[i])
			} else {
				values = append(values, nil)
			}
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func numericCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// ExportDataset renders the normalized dataset alone as CSV, for users who
// want the cleaned data without a run.
func (s *ExportService) ExportDataset(ctx context.Context, id core.DatasetID) (*Export, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(session.Data.Rows) == 0 {
		return nil, errors.InvalidInput("apply a column mapping before exporting the dataset")
	}

	hasStudy := session.Data.Mapping != nil && session.Data.Mapping.HasStudyID()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"effect", "se", "n_obs"}
	if hasStudy {
		header = append(header, "study_id")
	}
	_ = w.Write(header)
	for _, row := range session.Data.Rows {
		record := []string{csvCell(row.Effect), csvCell(row.SE), csvCell(row.NObs)}
		if hasStudy {
			study := ""
			if row.StudyID != nil {
				study = fmt.Sprint(row.StudyID)
			}
			record = append(record, study)
		}
		_ = w.Write(record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to render dataset export")
	}
	return &Export{
		Filename:    exportName(session, "maive-data", "csv"),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}

func csvCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func exportName(session *ports.Session, stem, ext string) string {
	return fmt.Sprintf("%s-%s.%s", stem, session.Data.ID.String()[:8], ext)
}
