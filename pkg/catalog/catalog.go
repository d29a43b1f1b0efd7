// Package catalog holds the ordered list of file mappings a run synchronizes.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sdejongh/aisync/pkg/models"
)

// Catalog is an immutable, ordered list of mappings keyed by relative path
type Catalog struct {
	mappings []models.FileMapping
}

// New validates mappings and returns a catalog preserving their order
func New(mappings []models.FileMapping) (*Catalog, error) {
	seen := make(map[string]bool, len(mappings))
	for i, m := range mappings {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i, err)
		}
		if seen[m.RelativePath] {
			return nil, &models.ValidationError{Field: "path", Message: "duplicate mapping " + m.RelativePath}
		}
		seen[m.RelativePath] = true
	}

	owned := make([]models.FileMapping, len(mappings))
	copy(owned, mappings)
	return &Catalog{mappings: owned}, nil
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := New(defaultMappings)
	if err != nil {
		panic("catalog: invalid built-in mapping: " + err.Error())
	}
	return c
}

// Mappings returns a copy of the mappings in catalog order
func (c *Catalog) Mappings() []models.FileMapping {
	out := make([]models.FileMapping, len(c.mappings))
	copy(out, c.mappings)
	return out
}

// Len returns the number of mappings
func (c *Catalog) Len() int {
	return len(c.mappings)
}

// Lookup finds a mapping by relative path
func (c *Catalog) Lookup(relativePath string) (models.FileMapping, bool) {
	for _, m := range c.mappings {
		if m.RelativePath == relativePath {
			return m, true
		}
	}
	return models.FileMapping{}, false
}

// file is the on-disk layout of a catalog file
type file struct {
	Mappings []models.FileMapping `yaml:"mappings"`
}

// LoadFromFile reads a YAML catalog file replacing the built-in catalog
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(f.Mappings) == 0 {
		return nil, &models.ValidationError{Field: "mappings", Message: "catalog file " + path + " defines no mappings"}
	}

	c, err := New(f.Mappings)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	return c, nil
}

// MarshalYAML renders the catalog in the same layout LoadFromFile reads
func (c *Catalog) MarshalYAML() (interface{}, error) {
	return file{Mappings: c.mappings}, nil
}
