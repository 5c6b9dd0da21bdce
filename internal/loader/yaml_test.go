package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemma/internal/domain"
)

const lovelace = `
version: "1"
name: lovelace
people:
  - key: annabella
    first_name: Annabella
    last_name: Milbanke
    sex: female
  - key: ada
    first_name: Ada
    last_name: Lovelace
    sex: f
    parent: annabella
  - key: byron
    first_name: Byron
    last_name: King-Noel
    sex: male
    parent: ada
  - key: stranger
`

func TestParseYAML(t *testing.T) {
	f, err := ParseYAML([]byte(lovelace))
	require.NoError(t, err)

	assert.Equal(t, "lovelace", f.Name)
	require.Len(t, f.People, 4)
	assert.Equal(t, -1, f.People[0].Parent)
	assert.Equal(t, 0, f.People[1].Parent)
	assert.Equal(t, 1, f.People[2].Parent)
	assert.Equal(t, domain.SexFemale, f.People[1].Sex)
	assert.Equal(t, domain.SexMale, f.People[2].Sex)
	assert.Equal(t, domain.SexUnknown, f.People[3].Sex)
	assert.Equal(t, 2, f.Roots())
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "people: [\n"},
		{"missing key", "people:\n  - first_name: Ada\n"},
		{"bad sex", "people:\n  - key: a\n    sex: robot\n"},
		{"duplicate key", "people:\n  - key: a\n  - key: a\n"},
		{"unknown parent", "people:\n  - key: a\n    parent: b\n"},
		{"parent listed after child", "people:\n  - key: a\n    parent: b\n  - key: b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lovelace), 0o644))

	f, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Len(t, f.People, 4)

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
