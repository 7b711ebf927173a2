package parse

import "strings"

// Keyword lists for plan-section scans. A line containing a keyword and
// exceeding the minimum length is captured whole.
var (
	procedureKeywords = []string{
		"biopsy", "excision", "injection", "aspiration", "suture",
		"removal", "drainage", "cryotherapy", "cauterization",
		"ekg", "ecg", "colonoscopy", "endoscopy", "joint injection",
	}
	labKeywords = []string{
		"cbc", "cmp", "bmp", "lipid panel", "metabolic panel", "tsh",
		"t3", "t4", "a1c", "hba1c", "glucose", "urinalysis", "culture",
		"vitamin d", "vitamin b12", "psa", "ferritin", "blood work", "labs",
	}
	imagingKeywords = []string{
		"x-ray", "xray", "mri", "ct scan", "ultrasound", "echocardiogram",
		"mammogram", "dexa", "pet scan", "doppler",
	}
)

// minOrderLineLen filters out bare keyword fragments; anything shorter is
// not a usable order line.
const minOrderLineLen = 5

// ExtractProcedures scans a text span for procedure order lines.
func ExtractProcedures(text string) []string {
	return scanKeywordLines(text, procedureKeywords)
}

// ExtractLabOrders scans a text span for laboratory order lines.
func ExtractLabOrders(text string) []string {
	return scanKeywordLines(text, labKeywords)
}

// ExtractImaging scans a text span for imaging order lines.
func ExtractImaging(text string) []string {
	return scanKeywordLines(text, imagingKeywords)
}

// scanKeywordLines captures every line that contains one of the keywords,
// deduplicating by linear membership so first-appearance order is kept.
// Document sections are tens of lines at most, so the quadratic scan is
// fine.
func scanKeywordLines(text string, keywords []string) []string {
	var results []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if len(line) <= minOrderLineLen {
			continue
		}

		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				if !containsString(results, line) {
					results = append(results, line)
				}
				break
			}
		}
	}

	return results
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
