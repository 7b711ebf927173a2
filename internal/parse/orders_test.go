package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLabOrders(t *testing.T) {
	plan := "Order CBC and CMP today\nRecheck TSH in 6 weeks\nContinue current diet"

	labs := ExtractLabOrders(plan)

	assert.Equal(t, []string{"Order CBC and CMP today", "Recheck TSH in 6 weeks"}, labs)
}

func TestExtractImaging(t *testing.T) {
	plan := "Obtain chest x-ray\nMRI of the right knee if symptoms persist"

	assert.Equal(t, []string{"Obtain chest x-ray", "MRI of the right knee if symptoms persist"},
		ExtractImaging(plan))
}

func TestExtractProcedures(t *testing.T) {
	plan := "Schedule colonoscopy\nSkin biopsy of left forearm lesion"

	assert.Equal(t, []string{"Schedule colonoscopy", "Skin biopsy of left forearm lesion"},
		ExtractProcedures(plan))
}

func TestScanKeywordLinesDeduplicates(t *testing.T) {
	plan := "Order CBC\nOrder CBC\nOrder CBC"

	assert.Equal(t, []string{"Order CBC"}, ExtractLabOrders(plan))
}

func TestScanKeywordLinesMinimumLength(t *testing.T) {
	// Bare keyword fragments are too short to be usable order lines.
	assert.Empty(t, ExtractLabOrders("CBC"))
}

func TestScanKeywordLinesNoKeywords(t *testing.T) {
	assert.Empty(t, ExtractImaging("Rest and hydration.\nReturn if symptoms worsen."))
}
