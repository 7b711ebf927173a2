package record

import (
	"errors"
	"time"
)

var ErrEmptyRecord = errors.New("record has no extracted fields")

// VisitType is a coarse classification of the kind of encounter.
type VisitType string

const (
	VisitOfficeVisit    VisitType = "Office Visit"
	VisitFollowUp       VisitType = "Follow-up"
	VisitConsultation   VisitType = "Consultation"
	VisitNewPatient     VisitType = "New Patient"
	VisitUrgentCare     VisitType = "Urgent Care"
	VisitEmergency      VisitType = "Emergency"
	VisitTelemedicine   VisitType = "Telemedicine"
	VisitProcedure      VisitType = "Procedure"
	VisitAnnualPhysical VisitType = "Annual Physical"
)

// VitalKey identifies one of the fixed vital-sign fields.
type VitalKey string

const (
	VitalHeight           VitalKey = "height"
	VitalWeight           VitalKey = "weight"
	VitalTemperature      VitalKey = "temperature"
	VitalBloodPressure    VitalKey = "bloodPressure"
	VitalPulse            VitalKey = "pulse"
	VitalRespiratoryRate  VitalKey = "respiratoryRate"
	VitalOxygenSaturation VitalKey = "oxygenSaturation"
	VitalBMI              VitalKey = "bmi"
)

// VitalKeys is the fixed display order used by the summary formatter.
var VitalKeys = []VitalKey{
	VitalHeight,
	VitalWeight,
	VitalTemperature,
	VitalBloodPressure,
	VitalPulse,
	VitalRespiratoryRate,
	VitalOxygenSaturation,
	VitalBMI,
}

// VitalLabels maps vital keys to their human-readable names.
var VitalLabels = map[VitalKey]string{
	VitalHeight:           "Height",
	VitalWeight:           "Weight",
	VitalTemperature:      "Temperature",
	VitalBloodPressure:    "Blood Pressure",
	VitalPulse:            "Pulse",
	VitalRespiratoryRate:  "Respiratory Rate",
	VitalOxygenSaturation: "Oxygen Saturation",
	VitalBMI:              "BMI",
}

type PatientInfo struct {
	Name         string `json:"name,omitempty" bson:"name,omitempty"`
	DateOfBirth  string `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
	RecordNumber string `json:"record_number,omitempty" bson:"record_number,omitempty"`
}

type Diagnosis struct {
	Name     string `json:"name" bson:"name"`
	ICDCode  string `json:"icd_code,omitempty" bson:"icd_code,omitempty"`
	Category string `json:"category,omitempty" bson:"category,omitempty"`
}

type Medication struct {
	Name      string `json:"name" bson:"name"`
	Dosage    string `json:"dosage,omitempty" bson:"dosage,omitempty"`
	Route     string `json:"route,omitempty" bson:"route,omitempty"`
	Frequency string `json:"frequency,omitempty" bson:"frequency,omitempty"`
}

// ClinicalRecord is the structured result of extracting one clinical
// document. Every field is optional: extraction is best-effort and an
// absent field means "not found in the source text", not an error.
type ClinicalRecord struct {
	ID string `json:"id,omitempty" bson:"_id,omitempty"`

	VisitType VisitType  `json:"visit_type,omitempty" bson:"visit_type,omitempty"`
	VisitDate *time.Time `json:"visit_date,omitempty" bson:"visit_date,omitempty"`

	Provider      string `json:"provider,omitempty" bson:"provider,omitempty"`
	ProviderTitle string `json:"provider_title,omitempty" bson:"provider_title,omitempty"`
	Department    string `json:"department,omitempty" bson:"department,omitempty"`
	Facility      string `json:"facility,omitempty" bson:"facility,omitempty"`

	Patient *PatientInfo `json:"patient,omitempty" bson:"patient,omitempty"`

	ChiefComplaint          string `json:"chief_complaint,omitempty" bson:"chief_complaint,omitempty"`
	HistoryOfPresentIllness string `json:"history_of_present_illness,omitempty" bson:"history_of_present_illness,omitempty"`
	ReviewOfSystems         string `json:"review_of_systems,omitempty" bson:"review_of_systems,omitempty"`
	PhysicalExam            string `json:"physical_exam,omitempty" bson:"physical_exam,omitempty"`
	Plan                    string `json:"plan,omitempty" bson:"plan,omitempty"`
	FollowUp                string `json:"follow_up,omitempty" bson:"follow_up,omitempty"`

	VitalSigns map[VitalKey]string `json:"vital_signs,omitempty" bson:"vital_signs,omitempty"`

	Diagnoses   []Diagnosis  `json:"diagnoses,omitempty" bson:"diagnoses,omitempty"`
	Medications []Medication `json:"medications,omitempty" bson:"medications,omitempty"`

	ProceduresPerformed []string `json:"procedures_performed,omitempty" bson:"procedures_performed,omitempty"`
	LabOrders           []string `json:"lab_orders,omitempty" bson:"lab_orders,omitempty"`
	Imaging             []string `json:"imaging,omitempty" bson:"imaging,omitempty"`

	// Persistence metadata, set by the store and importer.
	SourceFile string    `json:"source_file,omitempty" bson:"source_file,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// Title derives the display title used by the summary header and by the
// persistence sink's (title, date) deduplication check.
func (r *ClinicalRecord) Title() string {
	if r.VisitType != "" {
		return string(r.VisitType)
	}
	return "Clinical Visit"
}

// IsEmpty reports whether extraction found nothing at all.
func (r *ClinicalRecord) IsEmpty() bool {
	return r.VisitType == "" &&
		r.VisitDate == nil &&
		r.Provider == "" &&
		r.Department == "" &&
		r.Facility == "" &&
		r.Patient == nil &&
		r.ChiefComplaint == "" &&
		r.HistoryOfPresentIllness == "" &&
		r.ReviewOfSystems == "" &&
		r.PhysicalExam == "" &&
		r.Plan == "" &&
		r.FollowUp == "" &&
		len(r.VitalSigns) == 0 &&
		len(r.Diagnoses) == 0 &&
		len(r.Medications) == 0 &&
		len(r.ProceduresPerformed) == 0 &&
		len(r.LabOrders) == 0 &&
		len(r.Imaging) == 0
}

// Validate checks that a record is persistable. Sparse records are normal;
// only a completely empty record is rejected.
func (r *ClinicalRecord) Validate() error {
	if r.IsEmpty() {
		return ErrEmptyRecord
	}
	return nil
}
