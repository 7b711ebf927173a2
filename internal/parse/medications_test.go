package parse

import (
	"testing"

	"github.com/quillmed/chartextract/internal/record"
	"github.com/stretchr/testify/assert"
)

func TestExtractMedicationsStructured(t *testing.T) {
	text := "Lisinopril 10mg PO daily\nMetformin 500 mg oral twice daily\nLevothyroxine 75 mcg daily"

	meds := ExtractMedications(text)

	assert.Equal(t, []record.Medication{
		{Name: "Lisinopril", Dosage: "10mg", Route: "PO", Frequency: "daily"},
		{Name: "Metformin", Dosage: "500 mg", Route: "PO", Frequency: "twice daily"},
		{Name: "Levothyroxine", Dosage: "75 mcg", Frequency: "daily"},
	}, meds)
}

func TestExtractMedicationsRouteWords(t *testing.T) {
	// Both the bare route word and its adverb form decompose and normalize
	// to the standard abbreviation.
	cases := []struct {
		line  string
		route string
	}{
		{"Metformin 500 mg oral twice daily", "PO"},
		{"Metformin 500 mg orally twice daily", "PO"},
		{"Insulin 10 units subcutaneous daily", "SC"},
		{"Insulin 10 units subcutaneously daily", "SC"},
		{"Hydrocortisone 1% topically daily", "topical"},
	}

	for _, tc := range cases {
		meds := ExtractMedications(tc.line)
		if assert.Len(t, meds, 1, tc.line) {
			assert.Equal(t, tc.route, meds[0].Route, tc.line)
			assert.NotEmpty(t, meds[0].Dosage, tc.line)
		}
	}
}

func TestExtractMedicationsGracefulDegradation(t *testing.T) {
	// A line the composite pattern cannot decompose is kept whole as the
	// medication name, never dropped.
	line := "patient takes an herbal supplement of unknown composition"

	meds := ExtractMedications(line)

	assert.Len(t, meds, 1)
	assert.Equal(t, record.Medication{Name: line}, meds[0])
}

func TestExtractMedicationsBulletsAndNumbering(t *testing.T) {
	text := "1. Atorvastatin 20mg at bedtime\n- Aspirin 81mg daily"

	meds := ExtractMedications(text)

	assert.Equal(t, []record.Medication{
		{Name: "Atorvastatin", Dosage: "20mg", Frequency: "at bedtime"},
		{Name: "Aspirin", Dosage: "81mg", Frequency: "daily"},
	}, meds)
}

func TestExtractMedicationsCollapsesConsecutiveDuplicates(t *testing.T) {
	meds := ExtractMedications("Aspirin 81mg daily\nAspirin 81mg daily")

	assert.Len(t, meds, 1)
}

func TestExtractMedicationsEmptySection(t *testing.T) {
	assert.Empty(t, ExtractMedications(""))
	assert.Empty(t, ExtractMedications("\n  \n"))
}
