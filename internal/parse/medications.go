package parse

import (
	"regexp"
	"strings"

	"github.com/quillmed/chartextract/internal/record"
)

var bulletPrefixRe = regexp.MustCompile(`^(?:[-*•]\s*|\d+[.)]\s*)`)

// medicationLineRe decomposes one medication line into name, dosage, route
// and frequency. Dosage anchors the split: everything before it is the name.
var medicationLineRe = regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z0-9 /()-]*?)\s+` +
	`(\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?|iu|%)(?:/(?:day|week|ml|dose))?)` +
	`(?:[\s,]+(po|oral(?:ly)?|im|iv|sc|subq|subcutaneous(?:ly)?|topical(?:ly)?|inhaled|sublingual|nasal))?` +
	`(?:[\s,]+(once daily|twice daily|three times daily|daily|nightly|at bedtime|every \d+ hours?|weekly|monthly|bid|tid|qid|qhs|qam|prn|as needed))?` +
	`[\s.]*$`)

// ExtractMedications splits the medications section into lines and attempts
// to decompose each into structured fields. A line the pattern cannot
// decompose is kept whole as the medication name: extraction degrades, it
// never drops data. Exact consecutive duplicate lines are collapsed.
func ExtractMedications(text string) []record.Medication {
	var meds []record.Medication
	var prev string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = bulletPrefixRe.ReplaceAllString(line, "")
		if line == "" || line == prev {
			continue
		}
		prev = line

		if m := medicationLineRe.FindStringSubmatch(line); m != nil {
			meds = append(meds, record.Medication{
				Name:      strings.TrimSpace(m[1]),
				Dosage:    normalizeSpaces(m[2]),
				Route:     routeAbbrev(m[3]),
				Frequency: strings.ToLower(m[4]),
			})
			continue
		}

		meds = append(meds, record.Medication{Name: line})
	}

	return meds
}

var routeSynonyms = map[string]string{
	"oral": "PO", "orally": "PO",
	"subcutaneous": "SC", "subcutaneously": "SC", "subq": "SC",
	"topically": "topical",
}

var routeAbbrevs = map[string]bool{"po": true, "im": true, "iv": true, "sc": true}

// routeAbbrev normalizes a captured route: standard abbreviations are
// uppercased, full words map to their abbreviation where one exists.
func routeAbbrev(route string) string {
	route = strings.ToLower(route)
	if canonical, ok := routeSynonyms[route]; ok {
		return canonical
	}
	if routeAbbrevs[route] {
		return strings.ToUpper(route)
	}
	return route
}
