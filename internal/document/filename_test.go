package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateFromFilename(t *testing.T) {
	cases := map[string]string{
		"visit_2024-03-14_dr_smith.pdf": "2024-03-14",
		"labs-03-14-2024.txt":           "2024-03-14",
		"note_20240314.pdf":             "2024-03-14",
	}

	for path, want := range cases {
		got := DateFromFilename(path)
		if assert.NotNil(t, got, "path %q", path) {
			assert.Equal(t, want, got.Format("2006-01-02"), "path %q", path)
		}
	}

	assert.Nil(t, DateFromFilename("undated_note.txt"))
}

func TestProviderFromFilename(t *testing.T) {
	assert.Equal(t, "Smith", ProviderFromFilename("visit_2024-03-14_dr_smith.pdf"))
	assert.Equal(t, "Jones", ProviderFromFilename("Dr. Jones followup.txt"))
	assert.Equal(t, "", ProviderFromFilename("labs-03-14-2024.txt"))
}
