// Package testkit generates synthetic meta-analysis datasets for demos and
// tests. The generator plants a known true effect plus selective reporting so
// the full pipeline has something realistic to chew on.
package testkit

import (
	"fmt"
	"math"
	"math/rand"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"maiveui/domain/dataset"
)

// MetaGeneratorConfig configures the synthetic meta-analysis generator
type MetaGeneratorConfig struct {
	StudyCount         int     `json:"study_count"`
	EstimatesPerStudy  int     `json:"estimates_per_study"`
	TrueEffect         float64 `json:"true_effect"`
	HeterogeneitySD    float64 `json:"heterogeneity_sd"`
	SelectionStrength  float64 `json:"selection_strength"`
	IncludeStudyIDs    bool    `json:"include_study_ids"`
	MalformedCellEvery int     `json:"malformed_cell_every"`
	MissingCellEvery   int     `json:"missing_cell_every"`
	Seed               int64   `json:"seed"`
}

// DefaultMetaConfig returns the defaults used by demo mode
func DefaultMetaConfig() MetaGeneratorConfig {
	return MetaGeneratorConfig{
		StudyCount:        40,
		EstimatesPerStudy: 5,
		TrueEffect:        0.3,
		HeterogeneitySD:   0.1,
		SelectionStrength: 0.4,
		IncludeStudyIDs:   true,
		Seed:              42,
	}
}

// MetaDataGenerator produces deterministic synthetic effect-size datasets
type MetaDataGenerator struct {
	config MetaGeneratorConfig
	rng    *rand.Rand
}

// NewMetaDataGenerator creates a generator seeded from the config
func NewMetaDataGenerator(config MetaGeneratorConfig) *MetaDataGenerator {
	return &MetaDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// ColumnNames returns the header row for the generated sheet
func (g *MetaDataGenerator) ColumnNames() []string {
	columns := []string{"effect", "se", "n_obs"}
	if g.config.IncludeStudyIDs {
		columns = append(columns, "study_id")
	}
	return columns
}

// Generate produces the full raw dataset. Deterministic for a given seed.
func (g *MetaDataGenerator) Generate() []dataset.RawRow {
	src := randv2.NewPCG(uint64(g.config.Seed), uint64(g.config.Seed))
	studyEffect := distuv.Normal{Mu: g.config.TrueEffect, Sigma: g.config.HeterogeneitySD, Src: src}
	sampling := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	var rows []dataset.RawRow
	cell := 0
	for study := 0; study < g.config.StudyCount; study++ {
		mu := studyEffect.Rand()
		studyID := fmt.Sprintf("Study %03d", study+1)

		for est := 0; est < g.config.EstimatesPerStudy; est++ {
			row := g.generateEstimate(mu, studyID, sampling)
			cell++
			g.corruptCells(row, cell)
			rows = append(rows, row)
		}
	}
	return rows
}

// generateEstimate draws one primary-study estimate around the study mean,
// resampling under-powered insignificant results to mimic selective reporting.
func (g *MetaDataGenerator) generateEstimate(mu float64, studyID string, sampling distuv.Normal) dataset.RawRow {
	for {
		n := 30 + g.rng.Intn(970)
		se := 1.0 / math.Sqrt(float64(n))
		effect := mu + se*sampling.Rand()

		insignificant := math.Abs(effect/se) < 1.96
		if insignificant && g.rng.Float64() < g.config.SelectionStrength {
			continue // the file drawer
		}

		row := dataset.RawRow{
			"effect": round4(effect),
			"se":     round4(se),
			"n_obs":  float64(n),
		}
		if g.config.IncludeStudyIDs {
			row["study_id"] = studyID
		}
		return row
	}
}

// corruptCells injects malformed and missing cells at the configured cadence
// so validation paths can be exercised against generated data.
func (g *MetaDataGenerator) corruptCells(row dataset.RawRow, cell int) {
	if every := g.config.MalformedCellEvery; every > 0 && cell%every == 0 {
		row["se"] = "n/a"
	}
	if every := g.config.MissingCellEvery; every > 0 && cell%every == 0 {
		row["effect"] = ""
	}
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
