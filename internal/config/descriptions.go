package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// Descriptions is the static mapping from table name to human-readable
// question description. It is loaded once at startup and read-only
// afterwards; handlers receive it by reference, no global state.
type Descriptions struct {
	byName map[string]string
}

// LoadDescriptions reads the question-descriptions YAML file. The
// reserved record-identifier key is removed before use when present.
func LoadDescriptions(path, reservedKey string) (*Descriptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptions file %s: %w", path, err)
	}

	byName := make(map[string]string)
	if err := yaml.Unmarshal(data, &byName); err != nil {
		return nil, fmt.Errorf("parse descriptions file %s: %w", path, err)
	}

	if reservedKey != "" {
		delete(byName, reservedKey)
	}

	return &Descriptions{byName: byName}, nil
}

// NewDescriptions builds a Descriptions from an in-memory mapping.
// Intended for fixtures in tests.
func NewDescriptions(m map[string]string) *Descriptions {
	byName := make(map[string]string, len(m))
	for k, v := range m {
		byName[k] = v
	}
	return &Descriptions{byName: byName}
}

// Get returns the description for a table name.
func (d *Descriptions) Get(name string) (string, bool) {
	desc, ok := d.byName[name]
	return desc, ok
}

// Has reports whether the table name is configured.
func (d *Descriptions) Has(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Names returns all configured table names in sorted order.
func (d *Descriptions) Names() []string {
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of configured tables.
func (d *Descriptions) Len() int {
	return len(d.byName)
}
