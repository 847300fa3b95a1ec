package results

import (
	"fmt"
	"strconv"
	"time"

	"maiveui/domain/dataset"
	"maiveui/domain/params"
)

// Section groups projected rows for display
type Section string

const (
	SectionEffect          Section = "Effect Estimate"
	SectionPublicationBias Section = "Publication Bias Analysis"
	SectionDiagnostics     Section = "Diagnostic Tests"
	SectionBootstrap       Section = "Bootstrap"
	SectionRunInfo         Section = "Run Information"
)

// Row is one labeled result line. Show encodes conditional visibility;
// hidden rows are kept in the list so exports can decide for themselves.
// Highlight marks rows the UI renders emphasized (significance flags).
type Row struct {
	Label     string  `json:"label"`
	Value     string  `json:"value"`
	Show      bool    `json:"show"`
	Section   Section `json:"section"`
	Highlight bool    `json:"highlight,omitempty"`
}

// RunMeta is optional run metadata appended as a trailing section
type RunMeta struct {
	Duration  time.Duration
	Timestamp time.Time
	DataInfo  *dataset.DataInfo
}

const valueDecimals = 4

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', valueDecimals, 64)
}

func formatCI(ci CI) string {
	return fmt.Sprintf("[%s, %s]", formatValue(ci[0]), formatValue(ci[1]))
}

func formatOptionalCI(ci OptionalCI) string {
	if !ci.Valid {
		return "NA"
	}
	return formatCI(ci.Value)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// Project flattens an estimation response into the ordered row list the
// display and the tabular export consume. Pure function of its inputs.
func Project(res ModelResults, p params.ModelParameters, meta *RunMeta) []Row {
	hausmanVisible := p.ModelType != params.ModelWAIVE && !p.IncludeStudyDummies
	bootstrapRun := p.StandardErrorTreatment == params.SEBootstrap

	rows := []Row{
		{Section: SectionEffect, Label: "Effect Estimate", Value: formatValue(res.EffectEstimate), Show: true},
		{Section: SectionEffect, Label: "Standard Error", Value: formatValue(res.StandardError), Show: true},
		{Section: SectionEffect, Label: "Significant at 5% level", Value: yesNo(res.IsSignificant), Show: true, Highlight: res.IsSignificant},
		{Section: SectionEffect, Label: "Anderson-Rubin 95% CI", Value: formatOptionalCI(res.AndersonRubinCI), Show: res.AndersonRubinCI.Valid},

		{Section: SectionPublicationBias, Label: "Publication Bias Estimate", Value: formatValue(res.PublicationBias.EggerCoef), Show: true},
		{Section: SectionPublicationBias, Label: "Publication Bias Standard Error", Value: formatValue(res.PublicationBias.EggerSE), Show: true},
		{Section: SectionPublicationBias, Label: "Publication Bias Significant at 5% level", Value: yesNo(res.PublicationBias.IsSignificant), Show: true, Highlight: res.PublicationBias.IsSignificant},
	}

	if pv := res.PublicationBias.PValue; pv != nil {
		rows = append(rows, Row{Section: SectionPublicationBias, Label: "Publication Bias p-value", Value: formatValue(*pv), Show: true})
	}
	rows = append(rows,
		Row{Section: SectionPublicationBias, Label: "Egger Bootstrap CI", Value: formatOptionalCI(res.PublicationBias.EggerBootCI), Show: bootstrapRun},
		Row{Section: SectionPublicationBias, Label: "Egger Anderson-Rubin CI", Value: formatOptionalCI(res.PublicationBias.EggerAndersonRubinCI), Show: res.PublicationBias.EggerAndersonRubinCI.Valid},
	)

	firstStageLabel := "First Stage F-Test"
	if res.FirstStage != nil && res.FirstStage.FStatisticLabel != "" {
		firstStageLabel = res.FirstStage.FStatisticLabel
	}
	firstStageValue := "NA"
	if res.FirstStageFTest.Valid {
		firstStageValue = formatValue(res.FirstStageFTest.Value)
	}
	rows = append(rows,
		Row{Section: SectionDiagnostics, Label: firstStageLabel, Value: firstStageValue, Show: res.FirstStageFTest.Valid},
		Row{Section: SectionDiagnostics, Label: "Hausman Test Statistic", Value: formatValue(res.HausmanTest.Statistic), Show: hausmanVisible},
		Row{Section: SectionDiagnostics, Label: "Hausman Test Critical Value", Value: formatValue(res.HausmanTest.CriticalValue), Show: hausmanVisible},
		Row{Section: SectionDiagnostics, Label: "Hausman Rejects Null", Value: yesNo(res.HausmanTest.RejectsNull), Show: hausmanVisible, Highlight: res.HausmanTest.RejectsNull},
	)

	bootEffectCI, bootSECI := "NA", "NA"
	if res.BootCI.Valid {
		bootEffectCI = formatCI(res.BootCI.Effect)
		bootSECI = formatCI(res.BootCI.SE)
	}
	bootEffectSE, bootSESE := "NA", "NA"
	if res.BootSE.Valid {
		bootEffectSE = formatValue(res.BootSE.Effect)
		bootSESE = formatValue(res.BootSE.SE)
	}
	rows = append(rows,
		Row{Section: SectionBootstrap, Label: "Bootstrap CI (Effect)", Value: bootEffectCI, Show: bootstrapRun},
		Row{Section: SectionBootstrap, Label: "Bootstrap CI (Standard Error)", Value: bootSECI, Show: bootstrapRun},
		Row{Section: SectionBootstrap, Label: "Bootstrap SE (Effect)", Value: bootEffectSE, Show: bootstrapRun},
		Row{Section: SectionBootstrap, Label: "Bootstrap SE (Standard Error)", Value: bootSESE, Show: bootstrapRun},
	)

	if meta != nil {
		rows = append(rows, projectMeta(meta)...)
	}
	return rows
}

func projectMeta(meta *RunMeta) []Row {
	var rows []Row
	if meta.Duration > 0 {
		rows = append(rows, Row{Section: SectionRunInfo, Label: "Run Duration", Value: meta.Duration.Round(time.Millisecond).String(), Show: true})
	}
	if !meta.Timestamp.IsZero() {
		rows = append(rows, Row{Section: SectionRunInfo, Label: "Run Timestamp", Value: meta.Timestamp.UTC().Format(time.RFC3339), Show: true})
	}
	if info := meta.DataInfo; info != nil {
		rows = append(rows,
			Row{Section: SectionRunInfo, Label: "Data File", Value: info.Filename, Show: true},
			Row{Section: SectionRunInfo, Label: "Observations", Value: strconv.Itoa(info.RowCount), Show: true},
			Row{Section: SectionRunInfo, Label: "Has Study ID", Value: yesNo(info.HasStudyID), Show: true},
		)
		if info.HasStudyID && info.StudyCount > 0 {
			rows = append(rows,
				Row{Section: SectionRunInfo, Label: "Distinct Studies", Value: strconv.Itoa(info.StudyCount), Show: true},
				Row{Section: SectionRunInfo, Label: "Median Observations per Study", Value: strconv.FormatFloat(info.MedianObservationsPerStudy, 'f', -1, 64), Show: true},
			)
		}
	}
	return rows
}

// VisibleRows filters the projection down to the rows whose Show flag is set
func VisibleRows(rows []Row) []Row {
	visible := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Show {
			visible = append(visible, row)
		}
	}
	return visible
}
