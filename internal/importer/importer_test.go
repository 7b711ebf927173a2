package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/quillmed/chartextract/internal/audit"
	"github.com/quillmed/chartextract/internal/record"
	"github.com/quillmed/chartextract/internal/search"
	"github.com/quillmed/chartextract/internal/store"
)

type mockStore struct {
	CreateFunc             func(ctx context.Context, rec *record.ClinicalRecord) error
	FindByTitleAndDateFunc func(ctx context.Context, title string, visitDate *time.Time) (string, error)
}

var _ store.Service = (*mockStore)(nil)

func (m *mockStore) Create(ctx context.Context, rec *record.ClinicalRecord) error {
	return m.CreateFunc(ctx, rec)
}

func (m *mockStore) Get(ctx context.Context, id string) (*record.ClinicalRecord, error) {
	return nil, store.ErrRecordNotFound
}

func (m *mockStore) List(ctx context.Context, limit, offset int) ([]*record.ClinicalRecord, error) {
	return nil, nil
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockStore) FindByTitleAndDate(ctx context.Context, title string, visitDate *time.Time) (string, error) {
	return m.FindByTitleAndDateFunc(ctx, title, visitDate)
}

type mockArchive struct {
	ArchiveFunc func(ctx context.Context, doc *store.ArchivedDocument) error
}

var _ store.ArchiveService = (*mockArchive)(nil)

func (m *mockArchive) Archive(ctx context.Context, doc *store.ArchivedDocument) error {
	return m.ArchiveFunc(ctx, doc)
}

func (m *mockArchive) Get(ctx context.Context, recordID string) (*store.ArchivedDocument, error) {
	return nil, store.ErrDocumentNotFound
}

type mockSearch struct {
	IndexRecordFunc func(ctx context.Context, rec *record.ClinicalRecord) error
}

var _ search.Service = (*mockSearch)(nil)

func (m *mockSearch) IndexRecord(ctx context.Context, rec *record.ClinicalRecord) error {
	return m.IndexRecordFunc(ctx, rec)
}

func (m *mockSearch) DeleteRecord(ctx context.Context, id string) error {
	return nil
}

func (m *mockSearch) Search(ctx context.Context, query string, from, to *time.Time, size int) ([]search.Hit, error) {
	return nil, nil
}

type mockAudit struct {
	Events []audit.Event
}

var _ audit.Service = (*mockAudit)(nil)

func (m *mockAudit) LogEvent(ctx context.Context, event *audit.Event) error {
	m.Events = append(m.Events, *event)
	return nil
}

func (m *mockAudit) QueryEvents(ctx context.Context, filters map[string]interface{}, from, size int) ([]audit.Event, error) {
	return nil, nil
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	assert.NoError(t, err)
}

const sampleNote = `Visit Type: Office Visit
Date: 03/14/2024
Provider: Dr. Smith, MD

Chief Complaint: Persistent cough

Assessment:
1. Acute bronchitis (J20.9)

Plan:
Supportive care, follow up in two weeks.
`

func newTestImporter(st store.Service, ar store.ArchiveService, se search.Service, au audit.Service) *Importer {
	return New(st, ar, se, au, zap.NewNop(), 0)
}

func TestRunImportsDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "visit_2024-03-14.txt", sampleNote)

	var created *record.ClinicalRecord
	var archived *store.ArchivedDocument
	var indexed bool

	st := &mockStore{
		CreateFunc: func(ctx context.Context, rec *record.ClinicalRecord) error {
			rec.ID = "rec-1"
			created = rec
			return nil
		},
		FindByTitleAndDateFunc: func(ctx context.Context, title string, visitDate *time.Time) (string, error) {
			return "", store.ErrRecordNotFound
		},
	}
	ar := &mockArchive{
		ArchiveFunc: func(ctx context.Context, doc *store.ArchivedDocument) error {
			archived = doc
			return nil
		},
	}
	se := &mockSearch{
		IndexRecordFunc: func(ctx context.Context, rec *record.ClinicalRecord) error {
			indexed = true
			return nil
		},
	}
	au := &mockAudit{}

	res, err := newTestImporter(st, ar, se, au).Run(context.Background(), dir)
	assert.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)

	assert.NotNil(t, created)
	assert.Equal(t, record.VisitOfficeVisit, created.VisitType)
	assert.Equal(t, "Smith", created.Provider)
	assert.Contains(t, created.SourceFile, "visit_2024-03-14.txt")

	assert.NotNil(t, archived)
	assert.Equal(t, "rec-1", archived.RecordID)
	assert.Equal(t, sampleNote, archived.RawText)
	assert.True(t, indexed)

	assert.Len(t, au.Events, 1)
	assert.Equal(t, audit.EventImport, au.Events[0].EventType)
}

func TestRunSkipsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "visit.txt", sampleNote)

	st := &mockStore{
		CreateFunc: func(ctx context.Context, rec *record.ClinicalRecord) error {
			t.Fatal("Create should not be called for a duplicate")
			return nil
		},
		FindByTitleAndDateFunc: func(ctx context.Context, title string, visitDate *time.Time) (string, error) {
			return "existing-id", nil
		},
	}
	au := &mockAudit{}

	imp := newTestImporter(st, &mockArchive{}, &mockSearch{}, au)
	res, err := imp.Run(context.Background(), dir)
	assert.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)

	assert.Len(t, au.Events, 1)
	assert.Equal(t, audit.EventSkip, au.Events[0].EventType)
	assert.Equal(t, "existing-id", au.Events[0].ResourceID)
}

func TestRunSkipsEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "blank.txt", "   \n\n  ")

	st := &mockStore{
		CreateFunc: func(ctx context.Context, rec *record.ClinicalRecord) error {
			t.Fatal("Create should not be called for an empty record")
			return nil
		},
		FindByTitleAndDateFunc: func(ctx context.Context, title string, visitDate *time.Time) (string, error) {
			return "", store.ErrRecordNotFound
		},
	}

	imp := newTestImporter(st, &mockArchive{}, &mockSearch{}, &mockAudit{})
	res, err := imp.Run(context.Background(), dir)
	assert.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)
}

func TestRunContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a_first.txt", sampleNote)
	writeDoc(t, dir, "b_second.txt", "Chief Complaint: headache\nDate: 04/01/2024\n")

	calls := 0
	st := &mockStore{
		CreateFunc: func(ctx context.Context, rec *record.ClinicalRecord) error {
			calls++
			if calls == 1 {
				return assert.AnError
			}
			return nil
		},
		FindByTitleAndDateFunc: func(ctx context.Context, title string, visitDate *time.Time) (string, error) {
			return "", store.ErrRecordNotFound
		},
	}
	ar := &mockArchive{
		ArchiveFunc: func(ctx context.Context, doc *store.ArchivedDocument) error { return nil },
	}
	se := &mockSearch{
		IndexRecordFunc: func(ctx context.Context, rec *record.ClinicalRecord) error { return nil },
	}

	imp := newTestImporter(st, ar, se, &mockAudit{})
	res, err := imp.Run(context.Background(), dir)
	assert.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Failed: 1}, res)
	assert.Equal(t, 2, calls)
}

func TestRunFilenameFallbacks(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "dr_jones_2024-05-20.txt", "Chief Complaint: rash\n")

	var created *record.ClinicalRecord
	st := &mockStore{
		CreateFunc: func(ctx context.Context, rec *record.ClinicalRecord) error {
			created = rec
			return nil
		},
		FindByTitleAndDateFunc: func(ctx context.Context, title string, visitDate *time.Time) (string, error) {
			return "", store.ErrRecordNotFound
		},
	}
	ar := &mockArchive{
		ArchiveFunc: func(ctx context.Context, doc *store.ArchivedDocument) error { return nil },
	}
	se := &mockSearch{
		IndexRecordFunc: func(ctx context.Context, rec *record.ClinicalRecord) error { return nil },
	}

	res, err := newTestImporter(st, ar, se, &mockAudit{}).Run(context.Background(), dir)
	assert.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)

	assert.NotNil(t, created)
	if assert.NotNil(t, created.VisitDate) {
		assert.Equal(t, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC), *created.VisitDate)
	}
	assert.Equal(t, "Jones", created.Provider)
}
