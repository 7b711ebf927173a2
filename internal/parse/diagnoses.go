package parse

import (
	"regexp"
	"strings"

	"github.com/quillmed/chartextract/internal/record"
)

var (
	diagnosisLineRe = regexp.MustCompile(`^(?:\d+[.)]\s+|[-*•]\s+)(.+)$`)

	// ICD-10 code in parentheses after a diagnosis name, e.g. "(I10)".
	icdCodeRe = regexp.MustCompile(`\(([A-TV-Z]\d{2}(?:\.\d{1,4})?)\)`)

	// diagnosticPhraseRe is the fallback: diagnostic verb phrases scanned
	// anywhere in the section when no structured lines are present.
	diagnosticPhraseRe = regexp.MustCompile(`(?i)(?:diagnosed with|consistent with|assessment of|suggestive of|suspicious for|history of)\s+([A-Za-z][A-Za-z0-9 /-]{2,60})`)
)

// ExtractDiagnoses parses the assessment/impression section. Numbered,
// bulleted and ICD-in-parentheses lines are recognized first; if none
// match, the section is scanned for diagnostic verb phrases. Exact
// consecutive duplicate names are collapsed.
func ExtractDiagnoses(text string) []record.Diagnosis {
	var diagnoses []record.Diagnosis
	var prev string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		content := ""
		if m := diagnosisLineRe.FindStringSubmatch(line); m != nil {
			content = m[1]
		} else if icdCodeRe.MatchString(line) {
			content = line
		}
		if content == "" {
			continue
		}

		d := splitDiagnosis(content)
		if d.Name == "" || d.Name == prev {
			continue
		}
		prev = d.Name
		diagnoses = append(diagnoses, d)
	}

	if len(diagnoses) > 0 {
		return diagnoses
	}

	// Fallback: no structured lines, scan for verb phrases.
	for _, m := range diagnosticPhraseRe.FindAllStringSubmatch(text, -1) {
		name := trimDiagnosisName(m[1])
		if name == "" || name == prev {
			continue
		}
		prev = name
		diagnoses = append(diagnoses, record.Diagnosis{Name: name})
	}

	return diagnoses
}

func splitDiagnosis(content string) record.Diagnosis {
	d := record.Diagnosis{}
	if m := icdCodeRe.FindStringSubmatch(content); m != nil {
		d.ICDCode = m[1]
		content = icdCodeRe.ReplaceAllString(content, "")
	}
	d.Name = trimDiagnosisName(content)
	return d
}

func trimDiagnosisName(name string) string {
	return strings.Trim(strings.TrimSpace(name), ".,;:-")
}
