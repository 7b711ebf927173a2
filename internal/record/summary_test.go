package record

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFormatSummaryPopulatedFields(t *testing.T) {
	rec := &ClinicalRecord{
		VisitType:      VisitFollowUp,
		VisitDate:      date(2024, time.March, 14),
		Provider:       "Smith",
		ProviderTitle:  "MD",
		ChiefComplaint: "Follow-up for hypertension",
		VitalSigns: map[VitalKey]string{
			VitalBloodPressure: "130/85",
			VitalPulse:         "72",
		},
		Diagnoses: []Diagnosis{{Name: "Hypertension", ICDCode: "I10"}},
		Plan:      "Continue lisinopril 10mg daily",
	}

	md := FormatSummary(rec)

	assert.True(t, strings.HasPrefix(md, "# Follow-up\n"))
	assert.Contains(t, md, "**Date:** March 14, 2024")
	assert.Contains(t, md, "**Provider:** Smith, MD")
	assert.Contains(t, md, "## Chief Complaint\n\nFollow-up for hypertension")
	assert.Contains(t, md, "- Blood Pressure: 130/85")
	assert.Contains(t, md, "- Pulse: 72")
	assert.Contains(t, md, "1. Hypertension (I10)")
	assert.Contains(t, md, "## Plan\n\nContinue lisinopril 10mg daily")
}

func TestFormatSummaryOmitsEmptySections(t *testing.T) {
	rec := &ClinicalRecord{ChiefComplaint: "cough"}

	md := FormatSummary(rec)

	assert.Contains(t, md, "## Chief Complaint")
	assert.NotContains(t, md, "## Vital Signs")
	assert.NotContains(t, md, "## Assessment")
	assert.NotContains(t, md, "## Medications")
	assert.NotContains(t, md, "## Plan")
	assert.NotContains(t, md, "**Provider:**")
	assert.NotContains(t, md, "**Date:**")
}

func TestFormatSummaryDeterministic(t *testing.T) {
	rec := &ClinicalRecord{
		VisitDate: date(2024, time.January, 2),
		VitalSigns: map[VitalKey]string{
			VitalHeight:        "170 cm",
			VitalWeight:        "68 kg",
			VitalBloodPressure: "118/76",
			VitalBMI:           "23.5",
		},
		Medications: []Medication{
			{Name: "Lisinopril", Dosage: "10mg", Route: "PO", Frequency: "daily"},
		},
	}

	first := FormatSummary(rec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FormatSummary(rec))
	}

	// Vitals render in the fixed display order regardless of map order.
	height := strings.Index(first, "- Height:")
	weight := strings.Index(first, "- Weight:")
	bp := strings.Index(first, "- Blood Pressure:")
	bmi := strings.Index(first, "- BMI:")
	assert.True(t, height < weight && weight < bp && bp < bmi)
}

func TestFormatSummaryUnclassifiedVisitTitle(t *testing.T) {
	md := FormatSummary(&ClinicalRecord{ChiefComplaint: "rash"})

	assert.True(t, strings.HasPrefix(md, "# Clinical Visit\n"))
}

func TestFormatSummaryMedicationLines(t *testing.T) {
	rec := &ClinicalRecord{
		Medications: []Medication{
			{Name: "Lisinopril", Dosage: "10mg", Route: "PO", Frequency: "daily"},
			{Name: "entire unparsed line kept as name"},
		},
	}

	md := FormatSummary(rec)

	assert.Contains(t, md, "- Lisinopril 10mg PO daily")
	assert.Contains(t, md, "- entire unparsed line kept as name")
}
