package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
)

// Origin identifies where a script was loaded from: an absolute filesystem
// path, or a slash-separated path inside a named module.
type Origin struct {
	Module string
	Path   string
}

func (o Origin) String() string {
	if o.Module == "" {
		return o.Path
	}
	return o.Module + ":" + o.Path
}

func (o Origin) IsZero() bool {
	return o.Module == "" && o.Path == ""
}

// Source is the raw text of a resolved script.
type Source struct {
	Origin Origin
	Text   []byte
}

// Resolver locates sub-scripts. from is the origin of the calling script and
// is zero for the entry script.
type Resolver interface {
	Resolve(imp ast.Import, from Origin) (*Source, error)
}

// ResolutionError reports a sub-script that could not be found or read.
type ResolutionError struct {
	Import ast.Import
	From   Origin
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.From.IsZero() {
		return fmt.Sprintf("cannot resolve %s: %v", e.Import, e.Err)
	}
	return fmt.Sprintf("%s: cannot resolve %s: %v", e.From, e.Import, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// FileResolver resolves bare paths against the filesystem and module-qualified
// paths against mounted module roots.
type FileResolver struct {
	modules map[string]fs.FS
	roots   map[string]string
}

func NewFileResolver() *FileResolver {
	return &FileResolver{
		modules: make(map[string]fs.FS),
		roots:   make(map[string]string),
	}
}

// Mount registers fsys under name. description identifies the root in
// duplicate-module errors.
func (r *FileResolver) Mount(name string, fsys fs.FS, description string) error {
	if !ast.IsIdentifier(name) {
		return fmt.Errorf("resolver: invalid module name %q", name)
	}
	if existing, ok := r.roots[name]; ok {
		return fmt.Errorf("resolver: module %s found in multiple roots (%s, %s)", name, existing, description)
	}
	r.modules[name] = fsys
	r.roots[name] = description
	return nil
}

// MountDir registers a directory as a module root.
func (r *FileResolver) MountDir(name, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolver: resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("resolver: module %s: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("resolver: module %s: %s is not a directory", name, abs)
	}
	return r.Mount(name, os.DirFS(abs), abs)
}

// Modules lists the mounted module names in sorted order.
func (r *FileResolver) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Root describes where a mounted module lives.
func (r *FileResolver) Root(name string) (string, bool) {
	root, ok := r.roots[name]
	return root, ok
}

func (r *FileResolver) Resolve(imp ast.Import, from Origin) (*Source, error) {
	switch {
	case imp.Module != "":
		return r.resolveModule(imp.Module, imp.Path, imp, from)
	case from.Module != "":
		// A bare path inside a module script stays inside that module.
		target := imp.Path
		if !strings.HasPrefix(target, "/") {
			target = path.Join(path.Dir(from.Path), target)
		}
		return r.resolveModule(from.Module, target, imp, from)
	default:
		return r.resolveFile(imp, from)
	}
}

func (r *FileResolver) resolveFile(imp ast.Import, from Origin) (*Source, error) {
	target := filepath.FromSlash(imp.Path)
	if !filepath.IsAbs(target) && from.Path != "" {
		target = filepath.Join(filepath.Dir(from.Path), target)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, &ResolutionError{Import: imp, From: from, Err: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &ResolutionError{Import: imp, From: from, Err: err}
	}
	return &Source{Origin: Origin{Path: abs}, Text: data}, nil
}

func (r *FileResolver) resolveModule(name, target string, imp ast.Import, from Origin) (*Source, error) {
	fsys, ok := r.modules[name]
	if !ok {
		return nil, &ResolutionError{
			Import: imp,
			From:   from,
			Err:    fmt.Errorf("module %s is not installed: %w", name, fs.ErrNotExist),
		}
	}
	clean := path.Clean(strings.TrimPrefix(target, "/"))
	if !fs.ValidPath(clean) || clean == "." {
		return nil, &ResolutionError{
			Import: imp,
			From:   from,
			Err:    fmt.Errorf("path %q is outside module %s: %w", target, name, fs.ErrInvalid),
		}
	}
	data, err := fs.ReadFile(fsys, clean)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = fmt.Errorf("%s:%s: %w", name, clean, pathErr.Err)
		}
		return nil, &ResolutionError{Import: imp, From: from, Err: err}
	}
	return &Source{Origin: Origin{Module: name, Path: clean}, Text: data}, nil
}
