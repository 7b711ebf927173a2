package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsEmptyRecord(t *testing.T) {
	assert.ErrorIs(t, (&ClinicalRecord{}).Validate(), ErrEmptyRecord)
	assert.ErrorIs(t, (&ClinicalRecord{ID: "abc"}).Validate(), ErrEmptyRecord)
}

func TestValidateAcceptsSparseRecord(t *testing.T) {
	rec := &ClinicalRecord{ChiefComplaint: "cough"}
	assert.NoError(t, rec.Validate())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Office Visit", (&ClinicalRecord{VisitType: VisitOfficeVisit}).Title())
	assert.Equal(t, "Clinical Visit", (&ClinicalRecord{}).Title())
}
