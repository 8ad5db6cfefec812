// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for storygraph configuration.
	DefaultConfigDir = ".storygraph"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultStoriesFile is the default stories registry file name.
	DefaultStoriesFile = "stories.yaml"
	// DefaultAliasesFile is the default alias table file name.
	DefaultAliasesFile = "aliases.yaml"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Pipeline PipelineConfig `yaml:"pipeline,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite graph store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. For per-story databases
	// this is computed dynamically using SQLitePathForStory.
	Path string `yaml:"path,omitempty"`
}

// PipelineConfig holds the tunable parameters of the extraction pipeline and
// consistency engine. The thresholds and penalties have no derivation beyond
// working defaults, so they are configuration rather than behavior.
type PipelineConfig struct {
	ChunkSize           int                `yaml:"chunk_size,omitempty"`
	ChunkOverlap        int                `yaml:"chunk_overlap,omitempty"`
	Workers             int                `yaml:"workers,omitempty"`
	ConfidenceThreshold float64            `yaml:"confidence_threshold,omitempty"`
	PassingThreshold    float64            `yaml:"passing_threshold,omitempty"`
	SeverityPenalties   map[string]float64 `yaml:"severity_penalties,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Pipeline: PipelineConfig{
			ChunkSize:           2000,
			ChunkOverlap:        200,
			Workers:             4,
			ConfidenceThreshold: 0.6,
			PassingThreshold:    80.0,
			SeverityPenalties: map[string]float64{
				"critical": 25,
				"high":     15,
				"medium":   8,
				"low":      3,
				"info":     0,
			},
		},
	}
}

// Load loads configuration from the .storygraph directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'storygraph stories create' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
}

// ConfigDir returns the path to the .storygraph config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// StoriesFilePath returns the path to the stories registry file.
func StoriesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultStoriesFile)
}

// AliasesFilePath returns the path to the alias table file.
func AliasesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultAliasesFile)
}

// SanitizeStoryName converts a story name to a valid collection suffix.
func SanitizeStoryName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}
	return name
}

// GenerateCollectionName creates a vector collection name for a story.
func GenerateCollectionName(storyName string) string {
	return "storygraph_" + SanitizeStoryName(storyName)
}

// SQLitePathForStory returns the SQLite database path for a given story.
func SQLitePathForStory(basePath, storyName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "stories", SanitizeStoryName(storyName), "graph.db")
}

// StoryDir returns the directory path for a given story.
func StoryDir(basePath, storyName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "stories", SanitizeStoryName(storyName))
}
