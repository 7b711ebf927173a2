package record

import (
	"fmt"
	"strings"
)

// FormatSummary renders a record as a Markdown document for human review.
// Section order is fixed; sections whose underlying field is empty are
// omitted entirely, so the same record always produces the same bytes.
func FormatSummary(r *ClinicalRecord) string {
	var b strings.Builder

	b.WriteString("# " + r.Title() + "\n")

	if r.VisitDate != nil {
		fmt.Fprintf(&b, "\n**Date:** %s\n", r.VisitDate.Format("January 2, 2006"))
	}
	if r.Provider != "" {
		b.WriteString("\n**Provider:** " + providerLine(r) + "\n")
	}
	if r.Department != "" {
		b.WriteString("\n**Department:** " + r.Department + "\n")
	}
	if r.Facility != "" {
		b.WriteString("\n**Facility:** " + r.Facility + "\n")
	}

	if p := r.Patient; p != nil {
		if p.Name != "" {
			b.WriteString("\n**Patient:** " + p.Name + "\n")
		}
		if p.DateOfBirth != "" {
			b.WriteString("\n**Date of Birth:** " + p.DateOfBirth + "\n")
		}
		if p.RecordNumber != "" {
			b.WriteString("\n**MRN:** " + p.RecordNumber + "\n")
		}
	}

	writeTextSection(&b, "Chief Complaint", r.ChiefComplaint)

	if len(r.VitalSigns) > 0 {
		b.WriteString("\n## Vital Signs\n\n")
		for _, key := range VitalKeys {
			if v, ok := r.VitalSigns[key]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", VitalLabels[key], v)
			}
		}
	}

	writeTextSection(&b, "History of Present Illness", r.HistoryOfPresentIllness)
	writeListSection(&b, "Procedures Performed", r.ProceduresPerformed)

	if len(r.Diagnoses) > 0 {
		b.WriteString("\n## Assessment\n\n")
		for i, d := range r.Diagnoses {
			line := d.Name
			if d.ICDCode != "" {
				line += " (" + d.ICDCode + ")"
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, line)
		}
	}

	writeTextSection(&b, "Plan", r.Plan)

	if len(r.Medications) > 0 {
		b.WriteString("\n## Medications\n\n")
		for _, m := range r.Medications {
			b.WriteString("- " + medicationLine(m) + "\n")
		}
	}

	writeListSection(&b, "Lab Orders", r.LabOrders)
	writeListSection(&b, "Imaging", r.Imaging)
	writeTextSection(&b, "Follow-up", r.FollowUp)
	writeTextSection(&b, "Review of Systems", r.ReviewOfSystems)
	writeTextSection(&b, "Physical Exam", r.PhysicalExam)

	return b.String()
}

func providerLine(r *ClinicalRecord) string {
	if r.ProviderTitle != "" {
		return r.Provider + ", " + r.ProviderTitle
	}
	return r.Provider
}

func medicationLine(m Medication) string {
	parts := []string{m.Name}
	if m.Dosage != "" {
		parts = append(parts, m.Dosage)
	}
	if m.Route != "" {
		parts = append(parts, m.Route)
	}
	if m.Frequency != "" {
		parts = append(parts, m.Frequency)
	}
	return strings.Join(parts, " ")
}

func writeTextSection(b *strings.Builder, heading, text string) {
	if text == "" {
		return
	}
	b.WriteString("\n## " + heading + "\n\n" + text + "\n")
}

func writeListSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n## " + heading + "\n\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
}
