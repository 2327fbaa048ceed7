package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RawCatalog is a property catalog loaded from YAML.
type RawCatalog struct {
	Package string        `yaml:"package"`
	Events  []RawEventDef `yaml:"events"`
	Groups  []RawGroupDef `yaml:"groups"`
}

// RawEventDef is a client event that write-bound fields can reference.
type RawEventDef struct {
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name"`
}

// RawGroupDef is one property group.
type RawGroupDef struct {
	Name        string           `yaml:"name"`
	ID          uint32           `yaml:"id"`
	Description string           `yaml:"description"`
	Properties  []RawPropertyDef `yaml:"properties"`
}

// RawPropertyDef is one field of a group.
type RawPropertyDef struct {
	Key      string `yaml:"key"`
	Field    uint32 `yaml:"field"`
	Native   string `yaml:"native"`
	Unit     string `yaml:"unit"`
	Type     string `yaml:"type"` // "float", "bool", "int", "string"
	Decimals *int   `yaml:"decimals"`
	Writable bool   `yaml:"writable"`
	Event    string `yaml:"event"`
}

// ParseCatalog parses and validates a catalog from YAML bytes.
func ParseCatalog(data []byte) (*RawCatalog, error) {
	var cat RawCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if cat.Package == "" {
		return nil, fmt.Errorf("catalog missing package")
	}
	if err := ValidateCatalog(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// LoadCatalog loads a catalog from a file.
func LoadCatalog(path string) (*RawCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ValidateCatalog rejects duplicate ids and dangling references.
func ValidateCatalog(cat *RawCatalog) error {
	events := make(map[string]bool)
	eventIDs := make(map[uint32]string)
	for _, e := range cat.Events {
		if prev, ok := eventIDs[e.ID]; ok {
			return fmt.Errorf("event id %d used by %s and %s", e.ID, prev, e.Name)
		}
		eventIDs[e.ID] = e.Name
		events[e.Name] = true
	}

	groupIDs := make(map[uint32]string)
	fields := make(map[uint32]string)
	for _, g := range cat.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d missing name", g.ID)
		}
		if prev, ok := groupIDs[g.ID]; ok {
			return fmt.Errorf("group id %d used by %s and %s", g.ID, prev, g.Name)
		}
		groupIDs[g.ID] = g.Name

		keys := make(map[string]bool)
		for _, p := range g.Properties {
			where := g.Name + "." + p.Key
			if p.Key == "" || p.Native == "" {
				return fmt.Errorf("%s: key and native name are required", where)
			}
			if keys[p.Key] {
				return fmt.Errorf("%s: duplicate key", where)
			}
			keys[p.Key] = true
			if p.Field == 0 {
				return fmt.Errorf("%s: field id 0 is reserved", where)
			}
			if prev, ok := fields[p.Field]; ok {
				return fmt.Errorf("duplicate field id %d: %s and %s", p.Field, prev, where)
			}
			fields[p.Field] = where
			if _, ok := dataTypes[p.Type]; !ok {
				return fmt.Errorf("%s: unknown type %q", where, p.Type)
			}
			if p.Event != "" && !events[p.Event] {
				return fmt.Errorf("%s: unknown event %q", where, p.Event)
			}
			if p.Event != "" && !p.Writable {
				return fmt.Errorf("%s: event-bound fields must be writable", where)
			}
		}
	}
	return nil
}
