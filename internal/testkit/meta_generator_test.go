package testkit

import (
	"testing"

	"maiveui/domain/dataset"
	"maiveui/domain/validation"
)

func TestMetaDataGenerator_Deterministic(t *testing.T) {
	config := DefaultMetaConfig()

	first := NewMetaDataGenerator(config).Generate()
	second := NewMetaDataGenerator(config).Generate()

	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i]["effect"] != second[i]["effect"] || first[i]["se"] != second[i]["se"] {
			t.Fatalf("row %d differs between identically seeded runs", i)
		}
	}
}

func TestMetaDataGenerator_ProducesValidDataset(t *testing.T) {
	gen := NewMetaDataGenerator(DefaultMetaConfig())
	rows := gen.Generate()

	if len(rows) != 200 {
		t.Fatalf("expected 40 studies x 5 estimates, got %d rows", len(rows))
	}

	mapping := dataset.AutoDetect(gen.ColumnNames())
	if !mapping.IsComplete() || !mapping.HasStudyID() {
		t.Fatalf("generated headers should auto-map, got %+v", mapping)
	}

	result := validation.Validate(dataset.Normalize(rows, mapping), mapping)
	if !result.IsValid {
		t.Errorf("clean generated data should validate: %+v", result.Messages)
	}
}

func TestMetaDataGenerator_CorruptionKnobs(t *testing.T) {
	config := DefaultMetaConfig()
	config.StudyCount = 4
	config.EstimatesPerStudy = 5
	config.MalformedCellEvery = 7
	config.MissingCellEvery = 9

	rows := NewMetaDataGenerator(config).Generate()

	malformed, missing := 0, 0
	for _, row := range rows {
		if row["se"] == "n/a" {
			malformed++
		}
		if row["effect"] == "" {
			missing++
		}
	}
	if malformed == 0 || missing == 0 {
		t.Errorf("expected corrupted cells, got %d malformed and %d missing", malformed, missing)
	}
}
