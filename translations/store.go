// Package translations holds the raw name to canonical name mappings for
// the five gallery categories, backed by one YAML file per category.
//
// A Store is loaded once at startup, handed explicitly to every component
// that needs it and saved once at shutdown. It is not safe for concurrent use;
// only the sequential metadata path touches it.
package translations

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"hitodl/models"
	"hitodl/parser"

	"gopkg.in/yaml.v3"
)

// Store is the in-memory translation cache.
type Store struct {
	root    string
	entries map[models.Category]map[string]string
	changed bool
}

// New returns an empty store that saves into root.
func New(root string) *Store {
	s := &Store{
		root:    root,
		entries: make(map[models.Category]map[string]string, len(models.Categories)),
	}
	for _, c := range models.Categories {
		s.entries[c] = make(map[string]string)
	}
	return s
}

// FileName returns the translation file name for a category.
func FileName(c models.Category) string {
	return string(c) + ".yml"
}

// Load reads <root>/<category>.yml for every category.
// Missing and empty files yield empty mappings.
func Load(root string) (*Store, error) {
	s := New(root)

	for _, c := range models.Categories {
		path := filepath.Join(root, FileName(c))

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", FileName(c), err)
		}

		var m map[string]string
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", FileName(c), err)
		}
		maps.Copy(s.entries[c], m)
	}

	return s, nil
}

// Lookup returns the canonical name for raw. Entries with an empty value
// count as missing.
func (s *Store) Lookup(c models.Category, raw string) (string, bool) {
	v := s.entries[c][raw]
	return v, v != ""
}

// Set records a mapping and marks the store as changed.
func (s *Store) Set(c models.Category, raw, canonical string) {
	m, ok := s.entries[c]
	if !ok {
		m = make(map[string]string)
		s.entries[c] = m
	}
	if prev, ok := m[raw]; ok && prev == canonical {
		return
	}
	m[raw] = canonical
	s.changed = true
}

// Changed reports whether any mapping was added or modified since Load.
func (s *Store) Changed() bool {
	return s.changed
}

// Len returns the number of entries in a category.
func (s *Store) Len(c models.Category) int {
	return len(s.entries[c])
}

// Snapshot returns a deep copy of every mapping.
func (s *Store) Snapshot() map[models.Category]map[string]string {
	out := make(map[models.Category]map[string]string, len(s.entries))
	for c, m := range s.entries {
		out[c] = maps.Clone(m)
	}
	return out
}

// Save writes every category file if anything changed. Each file is
// replaced atomically.
func (s *Store) Save() error {
	if !s.changed {
		return nil
	}

	for _, c := range models.Categories {
		data, err := yaml.Marshal(s.entries[c])
		if err != nil {
			return fmt.Errorf("encode %s: %w", FileName(c), err)
		}
		if err := parser.WriteFileAtomic(filepath.Join(s.root, FileName(c)), data); err != nil {
			return fmt.Errorf("save %s: %w", FileName(c), err)
		}
	}

	s.changed = false
	return nil
}
