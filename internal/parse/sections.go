package parse

import (
	"regexp"
	"strings"
)

// Clinical documents carry no fixed schema; headings vary by provider and
// by the system that produced the note. Each section is therefore located
// by an alternation of synonym headings, and bounded by the next heading
// from the fixed stop list below (or end of document). The first matching
// span wins. A synonym missing from the list is silently missed, which is
// the accepted cost of this approach.

var (
	chiefComplaintRe = sectionStart(`chief complaint|cc|reason for visit`)
	hpiRe            = sectionStart(`history of present illness|hpi|history`)
	rosRe            = sectionStart(`review of systems|ros`)
	physicalExamRe   = sectionStart(`physical exam(?:ination)?|pe|exam`)
	vitalsRe         = sectionStart(`vital signs|vitals`)
	assessmentRe     = sectionStart(`assessment(?: and plan)?|impression|diagnos[ei]s`)
	planRe           = sectionStart(`plan|treatment plan|recommendations`)
	medicationsRe    = sectionStart(`medications?|current medications|medication list|prescriptions`)
	proceduresRe     = sectionStart(`procedures?(?: performed)?`)
	followUpRe       = sectionStart(`follow[- ]?up|return to clinic|rtc`)
)

// stopHeadingRe bounds every section: the extracted span ends at the first
// line that starts any recognized heading.
var stopHeadingRe = regexp.MustCompile(`(?im)^[ \t]*(?:` +
	`chief complaint|cc|reason for visit|` +
	`history of present illness|hpi|history|` +
	`review of systems|ros|` +
	`physical exam(?:ination)?|pe|exam|` +
	`vital signs|vitals|` +
	`assessment(?: and plan)?|impression|diagnos[ei]s|` +
	`plan|treatment plan|recommendations|` +
	`medications?|current medications|medication list|prescriptions|` +
	`procedures?(?: performed)?|` +
	`follow[- ]?up|return to clinic|rtc|` +
	`lab(?:oratory)? orders?|labs|imaging|` +
	`visit type|visit date|date of visit|date of service|encounter date|` +
	`provider|physician|attending|seen by|` +
	`department|clinic|facility|location|` +
	`patient(?: name)?|name|dob|date of birth|mrn|medical record number` +
	`)[ \t]*:`)

func sectionStart(synonyms string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:` + synonyms + `)[ \t]*:[ \t]*`)
}

// extractSection returns the trimmed text between the start heading and the
// next recognized heading, or end of document. Missing heading yields "".
func extractSection(text string, start *regexp.Regexp) string {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	rest := text[loc[1]:]
	if stop := stopHeadingRe.FindStringIndex(rest); stop != nil {
		rest = rest[:stop[0]]
	}
	return strings.TrimSpace(rest)
}

// lineField captures a single-line labeled value ("Provider: Dr. Smith"),
// stopping at end of line rather than at the next heading.
func lineField(text string, synonyms string) string {
	re := regexp.MustCompile(`(?im)^[ \t]*(?:` + synonyms + `)[ \t]*:[ \t]*(.+)$`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
