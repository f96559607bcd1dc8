package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile pins every module a manifest declares. It is written by
// `scriic deps install` next to scriic.yml.
type Lockfile struct {
	Path      string          `yaml:"-"`
	Root      string          `yaml:"root"`
	Generated string          `yaml:"generated"`
	Tool      string          `yaml:"tool"`
	Modules   []*LockedModule `yaml:"modules"`
}

// LockedModule records how a declared module was resolved. Source is either
// "path:<abs dir>" or "git+<url>@<commit>"; Version names the cached checkout.
type LockedModule struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum,omitempty"`
}

func NewLockfile(root, tool string) *Lockfile {
	lock := &Lockfile{Root: root, Tool: tool, Generated: timestamp()}
	lock.tidy()
	return lock
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// LoadLockfile reads a lockfile. A missing file is reported as is so callers
// can test it with errors.Is(err, fs.ErrNotExist); an empty one is an empty
// lockfile.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, errors.New("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	lock := &Lockfile{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(lock); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}
	lock.Path = abs
	lock.tidy()
	return lock, nil
}

// WriteLockfile writes lock to path, or to lock.Path when path is empty.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return errors.New("lockfile: nil lockfile")
	}
	if path == "" {
		path = lock.Path
	}
	if path == "" {
		return errors.New("lockfile: missing path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	lock.Path = abs
	if lock.Generated == "" {
		lock.Generated = timestamp()
	}
	lock.tidy()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock); err != nil {
		return fmt.Errorf("lockfile: encode %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encode %s: %w", abs, err)
	}
	return os.WriteFile(abs, buf.Bytes(), 0o644)
}

func (l *Lockfile) indexOf(name string) int {
	return slices.IndexFunc(l.Modules, func(mod *LockedModule) bool {
		return mod != nil && mod.Name == name
	})
}

func (l *Lockfile) FindModule(name string) (*LockedModule, bool) {
	if i := l.indexOf(name); i >= 0 {
		return l.Modules[i], true
	}
	return nil, false
}

// Put records mod, replacing any entry with the same name.
func (l *Lockfile) Put(mod *LockedModule) {
	if i := l.indexOf(mod.Name); i >= 0 {
		l.Modules[i] = mod
	} else {
		l.Modules = append(l.Modules, mod)
	}
	l.tidy()
}

// tidy trims every field and keeps modules ordered by name.
func (l *Lockfile) tidy() {
	l.Root = sanitizeName(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	l.Generated = strings.TrimSpace(l.Generated)
	l.Modules = slices.DeleteFunc(l.Modules, func(mod *LockedModule) bool { return mod == nil })
	for _, mod := range l.Modules {
		mod.Name = sanitizeName(mod.Name)
		mod.Version = strings.TrimSpace(mod.Version)
		mod.Source = strings.TrimSpace(mod.Source)
		mod.Checksum = strings.TrimSpace(mod.Checksum)
	}
	slices.SortStableFunc(l.Modules, func(a, b *LockedModule) int {
		return strings.Compare(a.Name, b.Name)
	})
	if l.Modules == nil {
		l.Modules = []*LockedModule{}
	}
}
