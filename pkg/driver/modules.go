package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
)

// ModuleRoot is a directory mounted under a module name.
type ModuleRoot struct {
	Name string
	Dir  string
}

// DiscoverModuleRoots turns search directories into module roots. A directory
// holding a scriic.yml is named after the manifest; any other directory after
// its base name. Missing directories are skipped.
func DiscoverModuleRoots(dirs []string) ([]ModuleRoot, error) {
	seen := make(map[string]struct{})
	var roots []ModuleRoot
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("modules: resolve %s: %w", dir, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		name := sanitizeName(filepath.Base(abs))
		manifestPath := filepath.Join(abs, ManifestFileName)
		if _, err := os.Stat(manifestPath); err == nil {
			manifest, err := LoadManifest(manifestPath)
			if err != nil {
				return nil, err
			}
			name = manifest.Name
		}
		if !ast.IsIdentifier(name) {
			return nil, fmt.Errorf("modules: %s does not map to a valid module name (got %q)", abs, name)
		}
		roots = append(roots, ModuleRoot{Name: name, Dir: abs})
	}
	return roots, nil
}

// ManifestModuleRoots lists the module roots a manifest provides: the project
// itself under its own name, then each declared module. Git modules must be
// present in the lockfile and checked out under cacheDir.
func ManifestModuleRoots(manifest *Manifest, lock *Lockfile, cacheDir string) ([]ModuleRoot, error) {
	if manifest == nil {
		return nil, nil
	}
	roots := []ModuleRoot{{Name: manifest.Name, Dir: manifest.Dir()}}
	for _, name := range manifest.ModuleNames() {
		spec := manifest.Modules[name]
		if !spec.IsGit() {
			dir := spec.Path
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(manifest.Dir(), dir)
			}
			roots = append(roots, ModuleRoot{Name: name, Dir: filepath.Clean(dir)})
			continue
		}
		if lock == nil {
			return nil, fmt.Errorf("modules: %s is a git module but %s is missing; run `scriic deps install`", name, LockfileName)
		}
		locked, ok := lock.FindModule(name)
		if !ok {
			return nil, fmt.Errorf("modules: %s is not locked; run `scriic deps install`", name)
		}
		dir := GitCheckoutDir(cacheDir, name, locked.Version)
		if _, err := os.Stat(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("modules: %s@%s is not checked out in %s; run `scriic deps install`", name, locked.Version, dir)
			}
			return nil, err
		}
		roots = append(roots, ModuleRoot{Name: name, Dir: dir})
	}
	return roots, nil
}

// GitCheckoutBase is the directory holding every cached checkout of a module.
func GitCheckoutBase(cacheDir, name string) string {
	return filepath.Join(cacheDir, "modules", "src", sanitizeName(name))
}

// GitCheckoutDir is where a pinned checkout of a git module lives.
func GitCheckoutDir(cacheDir, name, version string) string {
	return filepath.Join(GitCheckoutBase(cacheDir, name), SanitizePathSegment(version))
}

// SanitizePathSegment makes a revision descriptor safe to use as a directory name.
func SanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// MountAll mounts every root on the resolver.
func (r *FileResolver) MountAll(roots []ModuleRoot) error {
	for _, root := range roots {
		if err := r.MountDir(root.Name, root.Dir); err != nil {
			return err
		}
	}
	return nil
}
