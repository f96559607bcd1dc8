package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
	"gopkg.in/yaml.v3"
)

const (
	ManifestFileName = "scriic.yml"
	LockfileName     = "scriic.lock"

	// BundledModule is the name reserved for the scripts shipped with scriic.
	BundledModule = "scriicsics"
)

var ErrManifestNotFound = errors.New(ManifestFileName + " not found")

// Manifest models the scriic.yml contents.
type Manifest struct {
	Path    string
	Name    string
	Version string
	Authors []string
	Scripts []*ScriptEntry
	Modules map[string]*ModuleSpec
}

// ScriptEntry names a script that can be run by name from the CLI.
type ScriptEntry struct {
	Name string
	Path string
}

// ModuleSpec describes where a module's scripts come from: a local directory
// or a git repository pinned by rev, tag or branch.
type ModuleSpec struct {
	Path   string `yaml:"path,omitempty"`
	Git    string `yaml:"git,omitempty"`
	Rev    string `yaml:"rev,omitempty"`
	Tag    string `yaml:"tag,omitempty"`
	Branch string `yaml:"branch,omitempty"`
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest validation failed"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses and validates a scriic.yml file.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw manifestFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}
	manifest := raw.toManifest(abs)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start looking for scriic.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("manifest: searching from %s: %w", start, ErrManifestNotFound)
		}
		dir = parent
	}
}

// Dir is the directory containing the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// LockfilePath is where the lockfile for this manifest lives.
func (m *Manifest) LockfilePath() string {
	return filepath.Join(m.Dir(), LockfileName)
}

// FindScript looks up a named script entry.
func (m *Manifest) FindScript(name string) (*ScriptEntry, bool) {
	for _, entry := range m.Scripts {
		if entry.Name == name {
			return entry, true
		}
	}
	return nil, false
}

// ModuleNames returns the declared module names in sorted order.
func (m *Manifest) ModuleNames() []string {
	names := make([]string, 0, len(m.Modules))
	for name := range m.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsGit reports whether the module is fetched from a git repository.
func (s *ModuleSpec) IsGit() bool {
	return s.Git != ""
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	} else if !ast.IsIdentifier(m.Name) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("name %q must be a valid module name", m.Name))
	}
	for i, author := range m.Authors {
		if strings.TrimSpace(author) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	for _, entry := range m.Scripts {
		if entry.Path == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("script %q requires a path", entry.Name))
		}
	}
	for _, name := range m.ModuleNames() {
		spec := m.Modules[name]
		if !ast.IsIdentifier(name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("modules.%s: invalid module name", name))
			continue
		}
		if name == BundledModule || name == m.Name {
			errs.Issues = append(errs.Issues, fmt.Sprintf("modules.%s: name is reserved", name))
		}
		for _, issue := range spec.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("modules.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *ModuleSpec) normalize() {
	s.Path = strings.TrimSpace(s.Path)
	s.Git = strings.TrimSpace(s.Git)
	s.Rev = strings.TrimSpace(s.Rev)
	s.Tag = strings.TrimSpace(s.Tag)
	s.Branch = strings.TrimSpace(s.Branch)
}

func (s *ModuleSpec) validate() []string {
	var issues []string
	switch {
	case s.Path == "" && s.Git == "":
		issues = append(issues, "must specify path or git")
	case s.Path != "" && s.Git != "":
		issues = append(issues, "cannot specify both path and git")
	}
	pins := 0
	for _, pin := range []string{s.Rev, s.Tag, s.Branch} {
		if pin != "" {
			pins++
		}
	}
	if s.Git != "" && pins == 0 {
		issues = append(issues, "git modules require rev, tag, or branch")
	}
	if pins > 1 {
		issues = append(issues, "only one of rev, tag, or branch may be set")
	}
	if s.Git == "" && pins > 0 {
		issues = append(issues, "rev, tag, and branch only apply to git modules")
	}
	return issues
}

type manifestFile struct {
	Name    string     `yaml:"name"`
	Version string     `yaml:"version"`
	Authors stringList `yaml:"authors"`
	Scripts scriptMap  `yaml:"scripts"`
	Modules moduleMap  `yaml:"modules"`
}

func (mf manifestFile) toManifest(path string) *Manifest {
	manifest := &Manifest{
		Path:    path,
		Name:    sanitizeName(mf.Name),
		Version: strings.TrimSpace(mf.Version),
		Authors: append([]string(nil), mf.Authors...),
		Modules: make(map[string]*ModuleSpec, len(mf.Modules)),
	}
	for _, entry := range mf.Scripts.items {
		manifest.Scripts = append(manifest.Scripts, &ScriptEntry{Name: entry.name, Path: entry.path})
	}
	for name, spec := range mf.Modules {
		clone := *spec
		clone.normalize()
		manifest.Modules[sanitizeName(name)] = &clone
	}
	return manifest
}

// sanitizeName maps package-style names like "my-scripts" onto module names.
func sanitizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}

type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

type scriptMapEntry struct {
	name string
	path string
}

// scriptMap keeps scripts in declaration order.
type scriptMap struct {
	items []scriptMapEntry
}

func (sm *scriptMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		sm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: scripts must be a mapping")
	}
	items := make([]scriptMapEntry, 0, len(value.Content)/2)
	seen := make(map[string]struct{})
	for i := 0; i < len(value.Content); i += 2 {
		var key, path string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: scripts must not use empty keys")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("manifest: script %q declared twice", key)
		}
		seen[key] = struct{}{}
		if err := value.Content[i+1].Decode(&path); err != nil {
			return fmt.Errorf("manifest: script %q: %w", key, err)
		}
		items = append(items, scriptMapEntry{name: key, path: strings.TrimSpace(path)})
	}
	sm.items = items
	return nil
}

type moduleMap map[string]*ModuleSpec

// UnmarshalYAML accepts either a mapping spec or a bare string, which is
// shorthand for a local path.
func (mm *moduleMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*mm = make(moduleMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: modules must be a mapping")
	}
	result := make(moduleMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: modules must not use empty keys")
		}
		node := value.Content[i+1]
		spec := &ModuleSpec{}
		switch node.Kind {
		case yaml.ScalarNode:
			spec.Path = node.Value
		case yaml.MappingNode:
			if err := node.Decode(spec); err != nil {
				return fmt.Errorf("manifest: module %q: %w", key, err)
			}
		default:
			return fmt.Errorf("manifest: module %q must be a path or mapping", key)
		}
		result[key] = spec
	}
	*mm = result
	return nil
}
