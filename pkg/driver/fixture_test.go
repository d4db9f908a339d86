package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dinosaurFixture = `
specimens:
  - name: Tyrannosaurus
    relationships:
      - {type: FROM_ERA, attribute: Cretaceous}
      - {type: TEETH_ARE, attribute: Carnivore}
  - name: Velociraptor
    relationships:
      - {type: FROM_ERA, attribute: Cretaceous}
      - {type: TEETH_ARE, attribute: Carnivore}
  - name: Triceratops
    relationships:
      - {type: FROM_ERA, attribute: Cretaceous}
  - name: Dodo
`

func TestLoadFixture(t *testing.T) {
	m := NewMemoryDriver()
	require.NoError(t, m.LoadFixture(strings.NewReader(dinosaurFixture)))

	recs, err := m.Recommend(context.Background(), "Tyrannosaurus", DefaultRecommendationLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"Velociraptor", "Triceratops"}, Names(recs))
}

func TestLoadFixtureEmpty(t *testing.T) {
	m := NewMemoryDriver()
	assert.NoError(t, m.LoadFixture(strings.NewReader("")))
}

func TestLoadFixtureRejectsInvalidEntries(t *testing.T) {
	m := NewMemoryDriver()
	err := m.LoadFixture(strings.NewReader("specimens:\n  - relationships: []\n"))
	assert.Error(t, err)

	err = m.LoadFixture(strings.NewReader("specimens:\n  - name: Dodo\n    relationships:\n      - {type: FROM_ERA}\n"))
	assert.ErrorContains(t, err, "Dodo")
}

func TestLoadFixtureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dinosaurFixture), 0o644))

	m := NewMemoryDriver()
	require.NoError(t, m.LoadFixtureFile(path))

	assert.Error(t, m.LoadFixtureFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
