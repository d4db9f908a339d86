package driver

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// GraphFixture describes a specimen graph for the memory driver.
//
//	specimens:
//	  - name: Tyrannosaurus
//	    relationships:
//	      - type: FROM_ERA
//	        attribute: Cretaceous
type GraphFixture struct {
	Specimens []FixtureSpecimen `yaml:"specimens"`
}

// FixtureSpecimen is one specimen and its outgoing relationships.
type FixtureSpecimen struct {
	Name          string                `yaml:"name"`
	Relationships []FixtureRelationship `yaml:"relationships"`
}

// FixtureRelationship links a specimen to an attribute node.
type FixtureRelationship struct {
	Type      string `yaml:"type"`
	Attribute string `yaml:"attribute"`
}

// LoadFixture decodes a YAML fixture from r into m.
func (m *MemoryDriver) LoadFixture(r io.Reader) error {
	var fixture GraphFixture
	if err := yaml.NewDecoder(r).Decode(&fixture); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode graph fixture: %w", err)
	}

	for i, specimen := range fixture.Specimens {
		if specimen.Name == "" {
			return fmt.Errorf("specimen %d has no name", i)
		}
		m.AddSpecimen(specimen.Name)
		for _, rel := range specimen.Relationships {
			if err := m.AddRelationship(specimen.Name, rel.Type, rel.Attribute); err != nil {
				return fmt.Errorf("specimen %q: %w", specimen.Name, err)
			}
		}
	}
	return nil
}

// LoadFixtureFile loads a YAML fixture from path.
func (m *MemoryDriver) LoadFixtureFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open graph fixture: %w", err)
	}
	defer f.Close()
	return m.LoadFixture(f)
}
