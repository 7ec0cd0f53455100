package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store reads themes from a directory, one JSON file per theme. It holds no
// state beyond the path; every Load is a fresh file read.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads and validates the theme with the given identifier.
func (s *Store) Load(id string) (Theme, error) {
	id = strings.TrimSpace(id)
	if id == "" || id != filepath.Base(id) {
		return Theme{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	path := filepath.Join(s.dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Theme{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return Theme{}, fmt.Errorf("read theme %q: %w", id, err)
	}
	t, err := decodeStrict(data)
	if err != nil {
		return Theme{}, fmt.Errorf("theme %q: %w", id, err)
	}
	return t, nil
}

// List returns every theme identifier in the directory, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan themes dir %q: %w", s.dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Save writes the theme to dir as <name>.json in the declarative form Load
// accepts, so a saved theme reloads field-for-field equal.
func (t Theme) Save(dir string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal theme %q: %w", t.Name, err)
	}
	path := filepath.Join(dir, t.Name+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write theme %q: %w", path, err)
	}
	return nil
}
