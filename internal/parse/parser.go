package parse

import "github.com/quillmed/chartextract/internal/record"

// Parser extracts a structured ClinicalRecord from free-text visit notes
// and lab reports. It holds no mutable state and is safe for concurrent
// use; each call produces a fresh, independent record.
//
// Extraction is deliberately best-effort: layered regular expressions over
// noisy real-world text. A field the patterns cannot find is absent, never
// an error, and a section the vocabulary does not cover is silently
// missed.
type Parser struct{}

// NewParser creates a clinical document parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse runs the full extract-and-assemble pipeline over one document.
// Identical input always yields a field-for-field identical record.
func (p *Parser) Parse(text string) *record.ClinicalRecord {
	sections := map[string]string{
		"chiefComplaint": extractSection(text, chiefComplaintRe),
		"hpi":            extractSection(text, hpiRe),
		"ros":            extractSection(text, rosRe),
		"physicalExam":   extractSection(text, physicalExamRe),
		"vitals":         extractSection(text, vitalsRe),
		"assessment":     extractSection(text, assessmentRe),
		"plan":           extractSection(text, planRe),
		"medications":    extractSection(text, medicationsRe),
		"procedures":     extractSection(text, proceduresRe),
		"followUp":       extractSection(text, followUpRe),
	}

	return assemble(text, sections)
}
