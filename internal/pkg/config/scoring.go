package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aimatch/portal/internal/core/wizard"
)

// LoadScoring returns the default scoring, overlaid with the YAML file at
// path when one is given. Keys absent from the file keep their defaults.
func LoadScoring(path string) (wizard.Scoring, error) {
	s := wizard.DefaultScoring()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read scoring file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse scoring file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("scoring file %s: %w", path, err)
	}
	return s, nil
}
