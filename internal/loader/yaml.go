// Package loader reads family seed files that populate an empty canvas.
package loader

import (
	"fmt"
	"os"

	"stemma/internal/domain"
	"stemma/internal/validation"

	"gopkg.in/yaml.v3"
)

// FamilyYAML represents the seed file structure
type FamilyYAML struct {
	Version string       `yaml:"version"`
	Name    string       `yaml:"name,omitempty"`
	People  []PersonYAML `yaml:"people" validate:"dive"`
}

// PersonYAML represents one person of the seed file. Parent names the key of
// a person listed earlier in the file.
type PersonYAML struct {
	Key       string `yaml:"key" validate:"required"`
	FirstName string `yaml:"first_name,omitempty"`
	LastName  string `yaml:"last_name,omitempty"`
	Sex       string `yaml:"sex,omitempty" validate:"omitempty,oneof=male female m f"`
	Parent    string `yaml:"parent,omitempty"`
}

// Family is a validated seed ready to be inserted in file order
type Family struct {
	Name   string
	People []Member
}

// Member is one person of a seed. Parent is the index of the parent member
// in Family.People, or -1 for a root.
type Member struct {
	Key       string
	FirstName string
	LastName  string
	Sex       domain.Sex
	Parent    int
}

// LoadYAML loads a family seed from a YAML file
func LoadYAML(path string) (*Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseYAML(data)
}

// ParseYAML parses a family seed from YAML bytes
func ParseYAML(data []byte) (*Family, error) {
	var yamlData FamilyYAML
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return convertYAMLToFamily(&yamlData)
}

func convertYAMLToFamily(y *FamilyYAML) (*Family, error) {
	if err := validation.Struct(y); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	family := &Family{
		Name:   y.Name,
		People: make([]Member, 0, len(y.People)),
	}
	index := make(map[string]int, len(y.People))

	for i, p := range y.People {
		if _, dup := index[p.Key]; dup {
			return nil, fmt.Errorf("person %d: duplicate key %q", i, p.Key)
		}

		parent := -1
		if p.Parent != "" {
			idx, ok := index[p.Parent]
			if !ok {
				return nil, fmt.Errorf("person %q: parent %q must be listed before its children", p.Key, p.Parent)
			}
			parent = idx
		}

		sex, err := domain.ParseSex(p.Sex)
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", p.Key, err)
		}

		index[p.Key] = len(family.People)
		family.People = append(family.People, Member{
			Key:       p.Key,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Sex:       sex,
			Parent:    parent,
		})
	}

	return family, nil
}

// Roots returns the number of members without a parent
func (f *Family) Roots() int {
	n := 0
	for _, m := range f.People {
		if m.Parent < 0 {
			n++
		}
	}
	return n
}
