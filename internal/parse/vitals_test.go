package parse

import (
	"testing"

	"github.com/quillmed/chartextract/internal/record"
	"github.com/stretchr/testify/assert"
)

func TestExtractVitalsIndependence(t *testing.T) {
	vitals := ExtractVitals("BP: 120/80")

	assert.Len(t, vitals, 1)
	assert.Equal(t, "120/80", vitals[record.VitalBloodPressure])
}

func TestExtractVitalsFullSet(t *testing.T) {
	text := "Height: 170 cm, Weight: 68 kg, Temp: 98.6 F, BP: 118/76, " +
		"Pulse: 64 bpm, RR: 14, O2 Sat: 99%, BMI: 23.5"

	vitals := ExtractVitals(text)

	assert.Equal(t, "170 cm", vitals[record.VitalHeight])
	assert.Equal(t, "68 kg", vitals[record.VitalWeight])
	assert.Equal(t, "98.6 °F", vitals[record.VitalTemperature])
	assert.Equal(t, "118/76", vitals[record.VitalBloodPressure])
	assert.Equal(t, "64", vitals[record.VitalPulse])
	assert.Equal(t, "14", vitals[record.VitalRespiratoryRate])
	assert.Equal(t, "99%", vitals[record.VitalOxygenSaturation])
	assert.Equal(t, "23.5", vitals[record.VitalBMI])
}

func TestExtractVitalsTemperatureUnitClassification(t *testing.T) {
	// Above the threshold the reading can only be Fahrenheit.
	assert.Equal(t, "101.2 °F", ExtractVitals("Temperature: 101.2")[record.VitalTemperature])
	assert.Equal(t, "37.1 °C", ExtractVitals("Temperature: 37.1")[record.VitalTemperature])
	// An explicit unit wins over the magnitude heuristic.
	assert.Equal(t, "39 °C", ExtractVitals("Temp: 39 C")[record.VitalTemperature])
}

func TestExtractVitalsNoMatches(t *testing.T) {
	assert.Empty(t, ExtractVitals("Patient reports feeling well."))
}
