package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasesConfig maps entity type -> lowercase alias -> canonical name.
// Aliases are applied during candidate normalization, so "诸葛孔明" and
// "Kongming" can both merge into the canonical "诸葛亮".
type AliasesConfig struct {
	Aliases map[string]map[string]string `yaml:"aliases,omitempty"`
}

// LoadAliases loads the alias table from the .storygraph directory.
// A missing file yields an empty table, not an error.
func LoadAliases(basePath string) (*AliasesConfig, error) {
	data, err := os.ReadFile(AliasesFilePath(basePath))
	if os.IsNotExist(err) {
		return &AliasesConfig{Aliases: make(map[string]map[string]string)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading aliases file: %w", err)
	}

	var cfg AliasesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing aliases file: %w", err)
	}

	if cfg.Aliases == nil {
		cfg.Aliases = make(map[string]map[string]string)
	}

	return &cfg, nil
}

// Table returns the alias table with all alias keys lowercased and
// whitespace-stripped, ready for registry lookups.
func (a *AliasesConfig) Table() map[string]map[string]string {
	table := make(map[string]map[string]string, len(a.Aliases))
	for kind, m := range a.Aliases {
		inner := make(map[string]string, len(m))
		for alias, canonical := range m {
			key := strings.ToLower(strings.Join(strings.Fields(alias), ""))
			inner[key] = canonical
		}
		table[strings.ToLower(kind)] = inner
	}
	return table
}
