package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StoriesConfig holds dynamic story definitions (read/write).
type StoriesConfig struct {
	Stories map[string]StoryEntry `yaml:"stories,omitempty"`
}

// StoryEntry holds configuration for a specific story.
type StoryEntry struct {
	Collection  string `yaml:"collection"`
	Description string `yaml:"description,omitempty"`
}

// LoadStories loads the story registry from the .storygraph directory.
func LoadStories(basePath string) (*StoriesConfig, error) {
	storiesFile := StoriesFilePath(basePath)

	data, err := os.ReadFile(storiesFile)
	if os.IsNotExist(err) {
		return &StoriesConfig{
			Stories: make(map[string]StoryEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading stories file: %w", err)
	}

	var cfg StoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing stories file: %w", err)
	}

	if cfg.Stories == nil {
		cfg.Stories = make(map[string]StoryEntry)
	}

	return &cfg, nil
}

// Save writes the story registry to the stories file.
func (s *StoriesConfig) Save(basePath string) error {
	configDir := ConfigDir(basePath)
	storiesFile := StoriesFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling stories config: %w", err)
	}

	if err := os.WriteFile(storiesFile, data, 0600); err != nil {
		return fmt.Errorf("writing stories file: %w", err)
	}

	return nil
}

// Add adds a story to the registry.
func (s *StoriesConfig) Add(name string, entry StoryEntry) {
	if s.Stories == nil {
		s.Stories = make(map[string]StoryEntry)
	}
	s.Stories[name] = entry
}

// Remove removes a story from the registry.
func (s *StoriesConfig) Remove(name string) {
	if s.Stories != nil {
		delete(s.Stories, name)
	}
}

// Get returns the configuration for a specific story.
func (s *StoriesConfig) Get(name string) (*StoryEntry, error) {
	if len(s.Stories) == 0 {
		return nil, errors.New("no stories configured")
	}

	entry, ok := s.Stories[name]
	if !ok {
		var b strings.Builder
		count := 0
		for k := range s.Stories {
			if count > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			count++
			if count >= 5 {
				b.WriteString(", ...")
				break
			}
		}
		return nil, fmt.Errorf("story %q not found (available: %s)", name, b.String())
	}

	return &entry, nil
}

// GetCollection returns the vector collection name for a story.
func (s *StoriesConfig) GetCollection(name string) (string, error) {
	entry, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return entry.Collection, nil
}

// Exists checks if a story exists in the registry.
func (s *StoriesConfig) Exists(name string) bool {
	if s.Stories == nil {
		return false
	}
	_, ok := s.Stories[name]
	return ok
}

// StoriesExists checks if a stories registry file exists in the given path.
func StoriesExists(basePath string) bool {
	_, err := os.Stat(filepath.Join(basePath, DefaultConfigDir, DefaultStoriesFile))
	return err == nil
}
