package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/quillmed/chartextract/internal/record"
)

// Each vital is matched independently; partial extraction is normal.
var (
	bloodPressureRe = regexp.MustCompile(`(?i)\b(?:blood pressure|bp)\b[:\s]+(\d{2,3})\s*/\s*(\d{2,3})`)
	pulseRe         = regexp.MustCompile(`(?i)\b(?:pulse|heart rate|hr)\b[:\s]+(\d{2,3})(?:\s*bpm)?`)
	respRateRe      = regexp.MustCompile(`(?i)\b(?:respiratory rate|respirations?|rr)\b[:\s]+(\d{1,2})`)
	temperatureRe   = regexp.MustCompile(`(?i)\b(?:temperature|temp)\b[:\s]+(\d{2,3}(?:\.\d+)?)\s*(?:(?:°\s*)?([cf])\b)?`)
	oxygenSatRe     = regexp.MustCompile(`(?i)\b(?:oxygen saturation|o2 sat(?:uration)?|spo2|sao2)\b[:\s]+(\d{2,3})\s*%?`)
	heightRe        = regexp.MustCompile(`(?i)\bheight\b[:\s]+(\d+(?:\.\d+)?\s*(?:cm|m|in(?:ches)?)|\d+\s*'\s*\d+(?:\s*")?)`)
	weightRe        = regexp.MustCompile(`(?i)\bweight\b[:\s]+(\d+(?:\.\d+)?)\s*(kg|lbs?|pounds)?`)
	bmiRe           = regexp.MustCompile(`(?i)\b(?:bmi|body mass index)\b[:\s]+(\d{1,2}(?:\.\d+)?)`)
)

// fahrenheitThreshold classifies an unlabeled temperature reading: body
// temperatures above 45 cannot be Celsius.
const fahrenheitThreshold = 45.0

// ExtractVitals pulls the fixed set of vital signs out of a text span.
// Keys are absent when the corresponding vital is not found.
func ExtractVitals(text string) map[record.VitalKey]string {
	vitals := make(map[record.VitalKey]string)

	if m := bloodPressureRe.FindStringSubmatch(text); m != nil {
		vitals[record.VitalBloodPressure] = m[1] + "/" + m[2]
	}
	if m := pulseRe.FindStringSubmatch(text); m != nil {
		vitals[record.VitalPulse] = m[1]
	}
	if m := respRateRe.FindStringSubmatch(text); m != nil {
		vitals[record.VitalRespiratoryRate] = m[1]
	}
	if m := temperatureRe.FindStringSubmatch(text); m != nil {
		vitals[record.VitalTemperature] = m[1] + " °" + temperatureUnit(m[1], m[2])
	}
	if m := oxygenSatRe.FindStringSubmatch(text); m != nil {
		vitals[record.VitalOxygenSaturation] = m[1] + "%"
	}
	if m := heightRe.FindStringSubmatch(text); m != nil {
		vitals[record.VitalHeight] = normalizeSpaces(m[1])
	}
	if m := weightRe.FindStringSubmatch(text); m != nil {
		value := m[1]
		if m[2] != "" {
			value += " " + strings.ToLower(m[2])
		}
		vitals[record.VitalWeight] = value
	}
	if m := bmiRe.FindStringSubmatch(text); m != nil {
		vitals[record.VitalBMI] = m[1]
	}

	return vitals
}

func temperatureUnit(value, explicit string) string {
	if explicit != "" {
		return strings.ToUpper(explicit)
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil && v > fahrenheitThreshold {
		return "F"
	}
	return "C"
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
