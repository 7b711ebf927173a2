package parse

import (
	"regexp"
	"strings"

	"github.com/quillmed/chartextract/internal/record"
)

// Classification tables are ordered: rules are evaluated top to bottom and
// the first whose keywords match wins, so position encodes priority.
// "Annual Physical" must come before the generic "Office Visit" keywords,
// or every physical would classify as an office visit.

type visitTypeRule struct {
	keywords  []string
	visitType record.VisitType
}

var visitTypeRules = []visitTypeRule{
	{[]string{"annual physical", "annual exam", "wellness visit", "preventive visit"}, record.VisitAnnualPhysical},
	{[]string{"telemedicine", "telehealth", "video visit", "virtual visit"}, record.VisitTelemedicine},
	{[]string{"urgent care"}, record.VisitUrgentCare},
	{[]string{"emergency", "er visit", "ed visit"}, record.VisitEmergency},
	{[]string{"new patient"}, record.VisitNewPatient},
	{[]string{"follow-up", "follow up", "followup"}, record.VisitFollowUp},
	{[]string{"consultation", "consult"}, record.VisitConsultation},
	{[]string{"procedure note", "operative note"}, record.VisitProcedure},
	{[]string{"office visit", "clinic visit"}, record.VisitOfficeVisit},
}

// ClassifyVisitType infers the visit type from free text using the ordered
// keyword table. Returns "" when nothing matches.
func ClassifyVisitType(text string) record.VisitType {
	lower := strings.ToLower(text)
	for _, rule := range visitTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.visitType
			}
		}
	}
	return ""
}

type categoryRule struct {
	keywords []string
	category string
}

var categoryRules = []categoryRule{
	{[]string{"thyroid", "hashimoto", "graves", "diabetes", "insulin", "hormone", "adrenal"}, "Endocrine"},
	{[]string{"hypertension", "blood pressure", "cardiac", "heart", "cholesterol", "lipid", "atrial"}, "Cardiovascular"},
	{[]string{"joint", "arthritis", "back pain", "knee", "shoulder", "muscle", "pain", "osteo"}, "Musculoskeletal"},
	{[]string{"asthma", "copd", "bronchitis", "pneumonia", "respiratory", "sinusitis"}, "Respiratory"},
	{[]string{"rash", "eczema", "dermatitis", "acne", "psoriasis", "skin", "lesion"}, "Dermatologic"},
	{[]string{"anxiety", "depression", "insomnia", "adhd", "bipolar"}, "Mental Health"},
	{[]string{"migraine", "headache", "neuropathy", "seizure", "vertigo"}, "Neurologic"},
	{[]string{"gerd", "reflux", "ibs", "colitis", "gastritis", "ulcer"}, "Gastrointestinal"},
	{[]string{"uti", "kidney", "renal", "bladder"}, "Renal"},
	{[]string{"anemia", "deficiency", "b12", "iron"}, "Hematologic"},
	{[]string{"allergy", "allergic"}, "Allergy/Immunology"},
}

// ClassifyCondition maps a diagnosis name to a coarse condition category,
// defaulting to "Other". Used when routing diagnoses to the external
// records store.
func ClassifyCondition(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return "Other"
}

var providerRe = regexp.MustCompile(`(?i)^(?:dr\.?\s+)?(.+?)(?:\s*,\s*(MD|DO|NP|PA(?:-C)?|RN|DPM|DNP|APRN|PhD))?\s*$`)

// parseProvider splits "Dr. Smith, MD" into name "Smith" and title "MD".
func parseProvider(s string) (name, title string) {
	m := providerRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(m[1]), strings.ToUpper(m[2])
}

// assemble merges the per-section extraction outputs into one record and
// applies the classification heuristics. Pure data transformation.
func assemble(text string, sections map[string]string) *record.ClinicalRecord {
	rec := &record.ClinicalRecord{}

	if label := lineField(text, `visit type`); label != "" {
		rec.VisitType = ClassifyVisitType(label)
	}
	if rec.VisitType == "" {
		rec.VisitType = ClassifyVisitType(text)
	}

	if raw := lineField(text, `visit date|date of visit|date of service|encounter date`); raw != "" {
		rec.VisitDate = ParseDate(raw)
	}

	if raw := lineField(text, `provider|physician|attending|seen by`); raw != "" {
		rec.Provider, rec.ProviderTitle = parseProvider(raw)
	}
	rec.Department = lineField(text, `department|clinic`)
	rec.Facility = lineField(text, `facility|location`)

	patient := record.PatientInfo{
		Name:         lineField(text, `patient name|patient`),
		DateOfBirth:  lineField(text, `dob|date of birth`),
		RecordNumber: lineField(text, `mrn|medical record number`),
	}
	if patient != (record.PatientInfo{}) {
		rec.Patient = &patient
	}

	rec.ChiefComplaint = sections["chiefComplaint"]
	rec.HistoryOfPresentIllness = sections["hpi"]
	rec.ReviewOfSystems = sections["ros"]
	rec.PhysicalExam = sections["physicalExam"]
	rec.Plan = sections["plan"]
	rec.FollowUp = sections["followUp"]

	// Vitals: prefer the dedicated section, fall back to the whole
	// document when no vitals heading exists.
	vitalsText := sections["vitals"]
	if vitalsText == "" {
		vitalsText = text
	}
	if vitals := ExtractVitals(vitalsText); len(vitals) > 0 {
		rec.VitalSigns = vitals
	}

	rec.Diagnoses = ExtractDiagnoses(sections["assessment"])
	for i := range rec.Diagnoses {
		rec.Diagnoses[i].Category = ClassifyCondition(rec.Diagnoses[i].Name)
	}

	rec.Medications = ExtractMedications(sections["medications"])

	// Procedures come from a dedicated section when present, and from
	// keyword scans over the plan either way.
	if proc := sections["procedures"]; proc != "" {
		rec.ProceduresPerformed = splitNonEmptyLines(proc)
	}
	for _, p := range ExtractProcedures(rec.Plan) {
		if !containsString(rec.ProceduresPerformed, p) {
			rec.ProceduresPerformed = append(rec.ProceduresPerformed, p)
		}
	}
	rec.LabOrders = ExtractLabOrders(rec.Plan)
	rec.Imaging = ExtractImaging(rec.Plan)

	return rec
}

func splitNonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		if !containsString(lines, line) {
			lines = append(lines, line)
		}
	}
	return lines
}
