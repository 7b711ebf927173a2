package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillmed/chartextract/internal/audit"
	"github.com/quillmed/chartextract/internal/encryption"
	"github.com/quillmed/chartextract/internal/record"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("record with same title and date already exists")
)

// Service persists extracted clinical records. Patient-identifying fields
// are encrypted at rest; list fields are stored as jsonb.
type Service interface {
	Create(ctx context.Context, rec *record.ClinicalRecord) error
	Get(ctx context.Context, id string) (*record.ClinicalRecord, error)
	List(ctx context.Context, limit, offset int) ([]*record.ClinicalRecord, error)
	Delete(ctx context.Context, id string) error
	// FindByTitleAndDate implements the sink's deduplication convention:
	// an existing record with the same (title, visit date) means the
	// incoming document was already imported.
	FindByTitleAndDate(ctx context.Context, title string, visitDate *time.Time) (string, error)
}

type service struct {
	db      *pgxpool.Pool
	encrypt encryption.Service
	audit   audit.Service
}

func NewService(db *pgxpool.Pool, encrypt encryption.Service, auditService audit.Service) Service {
	return &service{
		db:      db,
		encrypt: encrypt,
		audit:   auditService,
	}
}

const recordColumns = `id, title, visit_type, visit_date, provider, provider_title,
	department, facility, patient_name, patient_dob, patient_mrn,
	chief_complaint, history_of_present_illness, review_of_systems,
	physical_exam, plan, follow_up, vital_signs, diagnoses, medications,
	procedures, lab_orders, imaging, source_file, created_at`

func (s *service) Create(ctx context.Context, rec *record.ClinicalRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()

	row, err := s.toRow(rec)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `INSERT INTO clinical_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		row.id, row.title, row.visitType, row.visitDate, row.provider,
		row.providerTitle, row.department, row.facility, row.patientName,
		row.patientDOB, row.patientMRN, row.chiefComplaint, row.hpi,
		row.ros, row.physicalExam, row.plan, row.followUp, row.vitalSigns,
		row.diagnoses, row.medications, row.procedures, row.labOrders,
		row.imaging, row.sourceFile, row.createdAt)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	s.audit.LogEvent(ctx, &audit.Event{
		EventType:  audit.EventModify,
		Action:     "CREATE",
		Resource:   "clinical_record",
		ResourceID: rec.ID,
		SourceFile: rec.SourceFile,
		Status:     "success",
	})

	return nil
}

func (s *service) Get(ctx context.Context, id string) (*record.ClinicalRecord, error) {
	rec, err := s.scanRecord(s.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM clinical_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	s.audit.LogEvent(ctx, &audit.Event{
		EventType:  audit.EventAccess,
		Action:     "GET",
		Resource:   "clinical_record",
		ResourceID: id,
		Status:     "success",
	})

	return rec, nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]*record.ClinicalRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM clinical_records
		 ORDER BY visit_date DESC NULLS LAST, created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*record.ClinicalRecord
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM clinical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	s.audit.LogEvent(ctx, &audit.Event{
		EventType:  audit.EventDelete,
		Action:     "DELETE",
		Resource:   "clinical_record",
		ResourceID: id,
		Status:     "success",
	})

	return nil
}

func (s *service) FindByTitleAndDate(ctx context.Context, title string, visitDate *time.Time) (string, error) {
	var id string
	var err error
	if visitDate == nil {
		err = s.db.QueryRow(ctx,
			`SELECT id FROM clinical_records WHERE title = $1 AND visit_date IS NULL LIMIT 1`,
			title).Scan(&id)
	} else {
		err = s.db.QueryRow(ctx,
			`SELECT id FROM clinical_records WHERE title = $1 AND visit_date = $2 LIMIT 1`,
			title, *visitDate).Scan(&id)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRecordNotFound
		}
		return "", err
	}
	return id, nil
}

// recordRow mirrors the clinical_records table; patient fields hold
// ciphertext and list fields hold jsonb payloads.
type recordRow struct {
	id             string
	title          string
	visitType      string
	visitDate      *time.Time
	provider       string
	providerTitle  string
	department     string
	facility       string
	patientName    string
	patientDOB     string
	patientMRN     string
	chiefComplaint string
	hpi            string
	ros            string
	physicalExam   string
	plan           string
	followUp       string
	vitalSigns     []byte
	diagnoses      []byte
	medications    []byte
	procedures     []byte
	labOrders      []byte
	imaging        []byte
	sourceFile     string
	createdAt      time.Time
}

func (s *service) toRow(rec *record.ClinicalRecord) (*recordRow, error) {
	row := &recordRow{
		id:             rec.ID,
		title:          rec.Title(),
		visitType:      string(rec.VisitType),
		visitDate:      rec.VisitDate,
		provider:       rec.Provider,
		providerTitle:  rec.ProviderTitle,
		department:     rec.Department,
		facility:       rec.Facility,
		chiefComplaint: rec.ChiefComplaint,
		hpi:            rec.HistoryOfPresentIllness,
		ros:            rec.ReviewOfSystems,
		physicalExam:   rec.PhysicalExam,
		plan:           rec.Plan,
		followUp:       rec.FollowUp,
		sourceFile:     rec.SourceFile,
		createdAt:      rec.CreatedAt,
	}

	if rec.Patient != nil {
		var err error
		if row.patientName, err = s.encrypt.Encrypt(rec.Patient.Name); err != nil {
			return nil, err
		}
		if row.patientDOB, err = s.encrypt.Encrypt(rec.Patient.DateOfBirth); err != nil {
			return nil, err
		}
		if row.patientMRN, err = s.encrypt.Encrypt(rec.Patient.RecordNumber); err != nil {
			return nil, err
		}
	}

	for _, field := range []struct {
		dst *[]byte
		src interface{}
	}{
		{&row.vitalSigns, rec.VitalSigns},
		{&row.diagnoses, rec.Diagnoses},
		{&row.medications, rec.Medications},
		{&row.procedures, rec.ProceduresPerformed},
		{&row.labOrders, rec.LabOrders},
		{&row.imaging, rec.Imaging},
	} {
		payload, err := json.Marshal(field.src)
		if err != nil {
			return nil, err
		}
		*field.dst = payload
	}

	return row, nil
}

func (s *service) scanRecord(row pgx.Row) (*record.ClinicalRecord, error) {
	var r recordRow
	err := row.Scan(&r.id, &r.title, &r.visitType, &r.visitDate, &r.provider,
		&r.providerTitle, &r.department, &r.facility, &r.patientName,
		&r.patientDOB, &r.patientMRN, &r.chiefComplaint, &r.hpi, &r.ros,
		&r.physicalExam, &r.plan, &r.followUp, &r.vitalSigns, &r.diagnoses,
		&r.medications, &r.procedures, &r.labOrders, &r.imaging,
		&r.sourceFile, &r.createdAt)
	if err != nil {
		return nil, err
	}

	rec := &record.ClinicalRecord{
		ID:                      r.id,
		VisitType:               record.VisitType(r.visitType),
		VisitDate:               r.visitDate,
		Provider:                r.provider,
		ProviderTitle:           r.providerTitle,
		Department:              r.department,
		Facility:                r.facility,
		ChiefComplaint:          r.chiefComplaint,
		HistoryOfPresentIllness: r.hpi,
		ReviewOfSystems:         r.ros,
		PhysicalExam:            r.physicalExam,
		Plan:                    r.plan,
		FollowUp:                r.followUp,
		SourceFile:              r.sourceFile,
		CreatedAt:               r.createdAt,
	}

	if r.patientName != "" || r.patientDOB != "" || r.patientMRN != "" {
		patient := &record.PatientInfo{}
		if patient.Name, err = s.encrypt.Decrypt(r.patientName); err != nil {
			return nil, err
		}
		if patient.DateOfBirth, err = s.encrypt.Decrypt(r.patientDOB); err != nil {
			return nil, err
		}
		if patient.RecordNumber, err = s.encrypt.Decrypt(r.patientMRN); err != nil {
			return nil, err
		}
		rec.Patient = patient
	}

	for _, field := range []struct {
		src []byte
		dst interface{}
	}{
		{r.vitalSigns, &rec.VitalSigns},
		{r.diagnoses, &rec.Diagnoses},
		{r.medications, &rec.Medications},
		{r.procedures, &rec.ProceduresPerformed},
		{r.labOrders, &rec.LabOrders},
		{r.imaging, &rec.Imaging},
	} {
		if len(field.src) == 0 {
			continue
		}
		if err := json.Unmarshal(field.src, field.dst); err != nil {
			return nil, err
		}
	}

	return rec, nil
}
