package asset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlEntry mirrors the §6.2 registry document shape: a map keyed by
// ticker, with fungible defaulting to true when omitted (fiat entries
// commonly omit it).
type yamlEntry struct {
	Name     string `yaml:"name"`
	Ticker   string `yaml:"ticker"`
	Fungible *bool  `yaml:"fungible"`
	Decimals int32  `yaml:"decimals"`
}

// LoadRegistryYAML reads a §6.2 asset-registry document from path.
func LoadRegistryYAML(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("reading asset registry %s: %w", path, err)
	}
	var doc map[string]yamlEntry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Registry{}, fmt.Errorf("parsing asset registry %s: %w", path, err)
	}

	// Preserve declaration order: yaml.v3 into a map loses it, so re-parse
	// into an ordered node sequence for the ticker key order.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Registry{}, fmt.Errorf("parsing asset registry %s: %w", path, err)
	}
	order := keyOrder(&root)

	assets := make([]Asset, 0, len(doc))
	seen := make(map[string]bool, len(doc))
	for _, key := range order {
		if seen[key] {
			continue
		}
		seen[key] = true
		entry, ok := doc[key]
		if !ok {
			continue
		}
		fungible := true
		if entry.Fungible != nil {
			fungible = *entry.Fungible
		}
		ticker := entry.Ticker
		if ticker == "" {
			ticker = key
		}
		assets = append(assets, New(entry.Name, ticker, fungible, entry.Decimals))
	}
	return NewRegistry(assets...), nil
}

// keyOrder walks a mapping-node document and returns its top-level keys in
// declared order.
func keyOrder(root *yaml.Node) []string {
	if len(root.Content) == 0 {
		return nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	return keys
}

// SaveYAML writes the registry back out in the §6.2 document shape.
func (r Registry) SaveYAML(path string) error {
	doc := make(map[string]yamlEntry, len(r.assets))
	for _, a := range r.assets {
		fungible := a.Fungible
		doc[a.Ticker] = yamlEntry{
			Name:     a.Name,
			Ticker:   a.Ticker,
			Fungible: &fungible,
			Decimals: a.Decimals,
		}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling asset registry: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
