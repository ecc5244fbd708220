package card

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// abilityRecord is the YAML form of AbilityText.
type abilityRecord struct {
	Description string `yaml:"description"`
	Archetype   string `yaml:"archetype"`
}

// Record is the on-disk YAML form of a card.
type Record struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Game        string `yaml:"game"`
	Element     string `yaml:"element"`
	Abilities   struct {
		Basic    abilityRecord `yaml:"basic"`
		Skill    abilityRecord `yaml:"skill"`
		Ultimate abilityRecord `yaml:"ultimate"`
	} `yaml:"abilities"`
}

// Spec converts the record into a card Spec.
func (r Record) Spec() Spec {
	return Spec{
		Name:        r.Name,
		Description: r.Description,
		Game:        Game(r.Game),
		Element:     Element(r.Element),
		Basic:       AbilityText{Description: r.Abilities.Basic.Description, Archetype: Archetype(r.Abilities.Basic.Archetype)},
		Skill:       AbilityText{Description: r.Abilities.Skill.Description, Archetype: Archetype(r.Abilities.Skill.Archetype)},
		Ultimate:    AbilityText{Description: r.Abilities.Ultimate.Description, Archetype: Archetype(r.Abilities.Ultimate.Archetype)},
	}
}

// LoadCardFromBytes parses and validates a single card record.
// Unknown YAML fields are rejected.
func LoadCardFromBytes(data []byte) (*Card, error) {
	var rec Record
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("parsing card YAML: %w", err)
	}
	return New(rec.Spec())
}

// LoadDirectory reads every *.yaml file under dir, descending into
// subdirectories (conventionally one per game), and returns a Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a Catalog or an error naming the first failing file;
// on error the partial result is discarded.
func LoadDirectory(dir string) (*Catalog, error) {
	var cards []*Card
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		c, err := LoadCardFromBytes(data)
		if err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
		cards = append(cards, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading card dir %q: %w", dir, err)
	}
	return NewCatalog(cards...)
}
