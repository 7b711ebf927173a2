package parse

import (
	"testing"

	"github.com/quillmed/chartextract/internal/record"
	"github.com/stretchr/testify/assert"
)

func TestExtractDiagnosesNumberedWithICD(t *testing.T) {
	text := "1. Hypertension (I10)\n2. Type 2 diabetes mellitus (E11.9)"

	diagnoses := ExtractDiagnoses(text)

	assert.Equal(t, []record.Diagnosis{
		{Name: "Hypertension", ICDCode: "I10"},
		{Name: "Type 2 diabetes mellitus", ICDCode: "E11.9"},
	}, diagnoses)
}

func TestExtractDiagnosesBulleted(t *testing.T) {
	diagnoses := ExtractDiagnoses("- Seasonal allergies\n- Eczema")

	assert.Equal(t, []record.Diagnosis{
		{Name: "Seasonal allergies"},
		{Name: "Eczema"},
	}, diagnoses)
}

func TestExtractDiagnosesICDOnPlainLine(t *testing.T) {
	diagnoses := ExtractDiagnoses("Hypothyroidism (E03.9)")

	assert.Equal(t, []record.Diagnosis{
		{Name: "Hypothyroidism", ICDCode: "E03.9"},
	}, diagnoses)
}

func TestExtractDiagnosesVerbPhraseFallback(t *testing.T) {
	text := "Patient was diagnosed with iron deficiency anemia. Findings are " +
		"consistent with chronic fatigue."

	diagnoses := ExtractDiagnoses(text)

	if assert.Len(t, diagnoses, 2) {
		assert.Equal(t, "iron deficiency anemia", diagnoses[0].Name)
		assert.Equal(t, "chronic fatigue", diagnoses[1].Name)
	}
}

func TestExtractDiagnosesCollapsesConsecutiveDuplicates(t *testing.T) {
	diagnoses := ExtractDiagnoses("1. Hypertension\n2. Hypertension")

	assert.Len(t, diagnoses, 1)
}

func TestExtractDiagnosesEmpty(t *testing.T) {
	assert.Empty(t, ExtractDiagnoses(""))
	assert.Empty(t, ExtractDiagnoses("Patient doing well overall."))
}
