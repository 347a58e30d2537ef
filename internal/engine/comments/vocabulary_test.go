package comments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVocabulary(t *testing.T) {
	v := NewVocabulary(" Camera", "camera", "", "BATTERY ", "Fast Charging")
	assert.Equal(t, []string{"camera", "battery", "fast charging"}, v.Terms())
	assert.Equal(t, 3, v.Len())

	terms := v.Terms()
	terms[0] = "changed"
	assert.Equal(t, "camera", v.Terms()[0], "Terms returns a copy")
}

func TestVocabularyMatchedBy(t *testing.T) {
	v := NewVocabulary("ram", "fast charging")
	tests := []struct {
		text string
		want bool
	}{
		{"8gb ram is plenty", true},
		{"i love this program", true}, // substring containment
		{"fast charging works", true},
		{"fast and charging", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, v.MatchedBy(tt.text))
		})
	}
}

func TestDefaultVocabulariesValid(t *testing.T) {
	v := DefaultVocabularies()
	require.NoError(t, v.Validate())
	assert.Contains(t, v.Features.Terms(), "battery")
	assert.Contains(t, v.Keywords.Terms(), "samsung")
}

func TestValidate(t *testing.T) {
	overlap := Vocabularies{Features: NewVocabulary("camera", "pixel"), Keywords: NewVocabulary("Pixel")}
	assert.ErrorContains(t, overlap.Validate(), `"pixel"`)

	assert.Error(t, Vocabularies{Keywords: NewVocabulary("samsung")}.Validate())
	assert.Error(t, Vocabularies{Features: NewVocabulary("camera")}.Validate())
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadVocabularies(t *testing.T) {
	v, err := LoadVocabularies("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVocabularies(), v)

	path := writeTemp(t, "vocab.yaml", "features:\n  - Lens\n  - zoom\nkeywords:\n  - Canon\n")
	v, err = LoadVocabularies(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"lens", "zoom"}, v.Features.Terms())
	assert.Equal(t, []string{"canon"}, v.Keywords.Terms())
}

func TestLoadVocabulariesFailures(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{"bad yaml", func(t *testing.T) string { return writeTemp(t, "bad.yaml", "features: [unclosed\n") }},
		{"overlap", func(t *testing.T) string {
			return writeTemp(t, "overlap.yaml", "features: [camera]\nkeywords: [camera]\n")
		}},
		{"empty keywords", func(t *testing.T) string { return writeTemp(t, "empty.yaml", "features: [camera]\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadVocabularies(tt.path(t))
			var se *StartupError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Resource, "vocabulary")
		})
	}
}
