// Package prefs persists small per-node watch preferences, such as whether
// playback starts muted. Flags are stored as single-letter values so the file
// stays trivially greppable and hand-editable.
package prefs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store reads and writes boolean preference flags backed by one file.
type Store struct {
	mu    sync.Mutex
	path  string
	flags map[string]bool
}

// Open loads the store at path, creating state for a missing file.
func Open(path string) (*Store, error) {
	s := &Store{path: path, flags: map[string]bool{}}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultPath returns the preference file location under the user config dir.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "neko", "prefs"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "neko", "prefs"), nil
}

// Get returns the flag value, or def when unset.
func (s *Store) Get(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.flags[key]; ok {
		return v
	}
	return def
}

// Set updates the flag and writes the file through.
func (s *Store) Set(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = value
	return s.saveLocked()
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		s.flags[strings.TrimSpace(key)] = strings.TrimSpace(value) == "t"
	}
	return scanner.Err()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	keys := make([]string, 0, len(s.flags))
	for key := range s.flags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := "f"
		if s.flags[key] {
			value = "t"
		}
		fmt.Fprintf(&b, "%s=%s\n", key, value)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
