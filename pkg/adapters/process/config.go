package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one external executable in a tools file.
type SourceConfig struct {
	Command string   `yaml:"command" json:"command"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// ConfigFile represents the structure of tools.yaml (or tools.json).
type ConfigFile struct {
	Tools []SourceConfig `yaml:"tools" json:"tools"`
}

// LoadSources reads a YAML or JSON tools file and returns the launch
// specs it lists. A missing file yields no sources, so a default path
// can be probed without special-casing.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	sources := make([]Source, 0, len(cfg.Tools))
	for _, t := range cfg.Tools {
		if t.Command == "" {
			continue
		}
		sources = append(sources, Source{Command: t.Command, Args: t.Args})
	}
	return sources, nil
}
