package presets

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// WriteYAML writes presets as a YAML list
func WriteYAML(w io.Writer, presets []models.FilterPreset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(presets); err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}
	return enc.Close()
}

// ReadYAML parses a YAML list of presets
func ReadYAML(r io.Reader) ([]models.FilterPreset, error) {
	var presets []models.FilterPreset
	if err := yaml.NewDecoder(r).Decode(&presets); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	return presets, nil
}

// Import saves every preset in order and stops at the first failure. System
// flags in the input are dropped.
func (s *Store) Import(presets []models.FilterPreset) (int, error) {
	for i, p := range presets {
		p.IsSystem = false
		if _, err := s.Save(p); err != nil {
			return i, fmt.Errorf("failed to import preset %q: %w", p.Name, err)
		}
	}
	return len(presets), nil
}
