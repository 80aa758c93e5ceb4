// Package mission defines the per-subject digest schemas. A mission names
// the ordered content categories a digest must be organized into and which
// category is mandatory.
package mission

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mission describes the digest schema for one logical subject.
type Mission struct {
	// ID is the mission identifier (e.g. "ai-news").
	ID string `yaml:"id"`
	// Name is the human-readable mission name.
	Name string `yaml:"name"`
	// Categories is the ordered list of digest sections.
	Categories []string `yaml:"categories"`
	// Primary is the mandatory category; a digest must contain at least
	// one item in it. Defaults to the first category.
	Primary string `yaml:"primary"`
}

// HasCategory reports whether name is one of the mission's categories.
func (m *Mission) HasCategory(name string) bool {
	for _, c := range m.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// validate checks a loaded mission for structural problems.
func (m *Mission) validate() error {
	if m.ID == "" {
		return fmt.Errorf("mission id is required")
	}
	if len(m.Categories) == 0 {
		return fmt.Errorf("mission %s: at least one category is required", m.ID)
	}
	if m.Primary == "" {
		m.Primary = m.Categories[0]
	}
	if !m.HasCategory(m.Primary) {
		return fmt.Errorf("mission %s: primary category %q is not in categories", m.ID, m.Primary)
	}
	return nil
}

// Default returns the built-in mission definition for the given id.
// It is used when no YAML definition exists on disk.
func Default(id string) *Mission {
	return &Mission{
		ID:         id,
		Name:       id,
		Categories: []string{"headlines", "research", "industry", "watching"},
		Primary:    "headlines",
	}
}

// Registry loads and caches mission definitions from a directory of YAML
// files, one mission per file.
type Registry struct {
	dir      string
	missions map[string]*Mission
}

// NewRegistry creates a registry reading definitions from dir. The directory
// may be empty or missing; unknown missions fall back to Default.
func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:      dir,
		missions: make(map[string]*Mission),
	}
}

// Get returns the mission definition for id, loading it from
// <dir>/<id>.yaml on first use. When no file exists, the built-in default
// schema is returned.
func (r *Registry) Get(id string) (*Mission, error) {
	if m, ok := r.missions[id]; ok {
		return m, nil
	}

	path := filepath.Join(r.dir, id+".yaml")
	m, err := LoadFile(path)
	if os.IsNotExist(err) {
		m = Default(id)
		err = nil
	}
	if err != nil {
		return nil, err
	}

	r.missions[id] = m
	return m, nil
}

// List returns the ids of all missions defined on disk.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read missions directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return ids, nil
}

// LoadFile loads a single mission definition from a YAML file.
func LoadFile(path string) (*Mission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := &Mission{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse mission %s: %w", path, err)
	}

	if m.ID == "" {
		m.ID = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}
