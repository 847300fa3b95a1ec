package ui

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"maiveui/domain/core"
	"maiveui/domain/dataset"
	"maiveui/domain/filter"
	"maiveui/domain/params"
	"maiveui/domain/results"
	"maiveui/internal/errors"
	"maiveui/internal/testkit"

	"maiveui/app"
)

const maxUploadBytes = 32 << 20

// handleUpload ingests a multipart spreadsheet upload and opens a session
func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, errors.InvalidInput("a spreadsheet file is required"))
		return
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		respondError(c, errors.InvalidInput("file exceeds the 32MB upload limit"))
		return
	}

	upload, err := s.analysis.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       upload.Session.Data.ID,
		"filename": upload.Session.Data.Filename,
		"columns":  upload.Session.Data.ColumnNames,
		"rows":     len(upload.Session.Data.RawRows),
		"mapping":  upload.Mapping,
	})
}

// handleDemoUpload opens a session seeded with generated demo data
func (s *Server) handleDemoUpload(c *gin.Context) {
	gen := testkit.NewMetaDataGenerator(testkit.DefaultMetaConfig())
	rows := gen.Generate()

	var buf bytes.Buffer
	if err := testkit.WriteCSV(&buf, gen.ColumnNames(), rows); err != nil {
		respondError(c, err)
		return
	}
	upload, err := s.analysis.Upload(c.Request.Context(), "demo-dataset.csv", &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       upload.Session.Data.ID,
		"filename": upload.Session.Data.Filename,
		"columns":  upload.Session.Data.ColumnNames,
		"rows":     len(upload.Session.Data.RawRows),
		"mapping":  upload.Mapping,
	})
}

func (s *Server) sessionID(c *gin.Context) (core.DatasetID, bool) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput("invalid session id"))
		return "", false
	}
	return id, true
}

// handleSession returns the full wizard session
func (s *Server) handleSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	session, err := s.analysis.Session(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleReset deletes the session
func (s *Server) handleReset(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	if err := s.analysis.Reset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleMapping confirms a column mapping and returns the validation outcome
func (s *Server) handleMapping(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	var mapping dataset.ColumnMapping
	if err := c.ShouldBindJSON(&mapping); err != nil {
		respondError(c, errors.InvalidInput("invalid mapping payload"))
		return
	}
	result, err := s.analysis.ApplyMapping(c.Request.Context(), id, mapping)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleFilter evaluates the subsample filter and returns match counts
func (s *Server) handleFilter(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	var state filter.State
	if err := c.ShouldBindJSON(&state); err != nil {
		respondError(c, errors.InvalidInput("invalid filter payload"))
		return
	}
	if state.Joiner == "" {
		state.Joiner = filter.JoinAnd
	}
	outcome, err := s.analysis.EvaluateFilter(c.Request.Context(), id, state)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matched_row_count": outcome.MatchedRowCount,
		"total_row_count":   outcome.TotalRowCount,
		"summary":           filter.Summary(state.Conditions, state.Joiner),
	})
}

// parameterEditRequest is one field edit from the configuration page
type parameterEditRequest struct {
	Field params.Field `json:"field"`
	Value any          `json:"value"`
}

// handleParameterEdit applies a single edit through the transition rules
func (s *Server) handleParameterEdit(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	var req parameterEditRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Field == "" {
		respondError(c, errors.InvalidInput("invalid parameter edit payload"))
		return
	}
	update, err := s.analysis.UpdateParameter(c.Request.Context(), id, params.Edit{Field: req.Field, Value: req.Value})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

// handleOptions returns the controls visible for the session's current state
func (s *Server) handleOptions(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	session, err := s.analysis.Session(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	hasStudyID := session.Data.Mapping != nil && session.Data.Mapping.HasStudyID()
	c.JSON(http.StatusOK, gin.H{
		"parameters": session.Parameters,
		"options": params.VisibleOptions(params.VisibilityContext{
			Parameters: session.Parameters,
			HasStudyID: hasStudyID,
		}),
	})
}

// handleRun submits the session to the estimator and returns projected rows
func (s *Server) handleRun(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	run, err := s.analysis.Run(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": run.Results,
		"rows":    results.VisibleRows(results.Project(*run.Results, run.Parameters, &run.Meta)),
	})
}

// handleResults re-projects the stored run without re-running the model
func (s *Server) handleResults(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	session, err := s.analysis.Session(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if session.Results == nil {
		respondError(c, errors.NotFound("run results"))
		return
	}
	meta := results.RunMeta{Duration: session.RunTook, Timestamp: session.RunAt}
	if session.Data.Mapping != nil {
		info := dataset.Summarize(session.Data.Filename, session.Data.Rows, *session.Data.Mapping)
		meta.DataInfo = &info
	}
	c.JSON(http.StatusOK, gin.H{
		"results": session.Results,
		"rows":    results.VisibleRows(results.Project(*session.Results, session.Parameters, &meta)),
	})
}

// handleExportResults streams the results export in the requested format
func (s *Server) handleExportResults(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	format := app.ExportFormat(c.DefaultQuery("format", string(app.FormatCSV)))
	export, err := s.export.ExportResults(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, err)
		return
	}
	streamExport(c, export)
}

// handleExportData streams the normalized dataset as CSV
func (s *Server) handleExportData(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	export, err := s.export.ExportDataset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	streamExport(c, export)
}

func streamExport(c *gin.Context, export *app.Export) {
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Content)
}
