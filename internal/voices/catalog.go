package voices

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Voice describes a provider voice selectable for an agent
type Voice struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Provider string `yaml:"provider" json:"provider"`
	Gender   string `yaml:"gender,omitempty" json:"gender,omitempty"`
	Accent   string `yaml:"accent,omitempty" json:"accent,omitempty"`
}

// Catalog holds the loaded voice catalog. The catalog is advisory: updates
// accept any voice id, the catalog only backs the listing endpoints.
type Catalog struct {
	mu     sync.RWMutex
	voices map[string]*Voice
}

// NewCatalog creates an empty voice catalog
func NewCatalog() *Catalog {
	return &Catalog{
		voices: make(map[string]*Voice),
	}
}

// catalogFile is the YAML structure of a voice catalog file
type catalogFile struct {
	Voices []Voice `yaml:"voices"`
}

// LoadFromDir loads all YAML catalog files from a directory
func (c *Catalog) LoadFromDir(dir string) error {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := c.LoadFromFile(file); err != nil {
			slog.Warn("failed to load voice catalog file", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("voice catalog loaded", "files", loaded, "voices", len(c.List()))
	return nil
}

// LoadFromFile loads voices from a single YAML file
func (c *Catalog) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range cf.Voices {
		voice := cf.Voices[i]
		if voice.ID == "" {
			return fmt.Errorf("voice id is required")
		}
		c.voices[voice.ID] = &voice
	}

	return nil
}

// Get retrieves a voice by id
func (c *Catalog) Get(id string) *Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.voices[id]
}

// List returns all loaded voices
func (c *Catalog) List() []*Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Voice, 0, len(c.voices))
	for _, v := range c.voices {
		result = append(result, v)
	}
	return result
}
