package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlphaMycelium/scriic/pkg/driver"
	"github.com/AlphaMycelium/scriic/pkg/log"
)

func (c *cli) runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "deps expects a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(c.stderr, "deps install does not take arguments (got %v)\n", args[1:])
			return 1
		}
		return c.runDepsInstall()
	default:
		fmt.Fprintf(c.stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func (c *cli) runDepsInstall() int {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	if manifest == nil {
		fmt.Fprintf(c.stderr, "deps install: %v\n", driver.ErrManifestNotFound)
		return 1
	}
	home, err := resolveScriicHome()
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	previous, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}

	installer := newModuleInstaller(manifest, home)
	lock, changed, err := installer.Install(previous)
	if err != nil {
		fmt.Fprintf(c.stderr, "deps install: %v\n", err)
		return 1
	}
	for _, mod := range lock.Modules {
		fmt.Fprintf(c.stdout, "%s %s (%s)\n", mod.Name, mod.Version, mod.Source)
	}
	if !changed {
		log.Info("%s is up to date", driver.LockfileName)
		return 0
	}
	if err := driver.WriteLockfile(lock, manifest.LockfilePath()); err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	log.Info("wrote %s", manifest.LockfilePath())
	return 0
}

// moduleInstaller resolves every module a manifest declares into lockfile
// entries, checking git modules out under the cache directory.
type moduleInstaller struct {
	manifest *driver.Manifest
	git      *gitFetcher
}

func newModuleInstaller(manifest *driver.Manifest, cacheDir string) *moduleInstaller {
	return &moduleInstaller{manifest: manifest, git: newGitFetcher(cacheDir)}
}

// Install builds a fresh lockfile and reports whether it differs from
// previous, which may be nil.
func (m *moduleInstaller) Install(previous *driver.Lockfile) (*driver.Lockfile, bool, error) {
	lock := driver.NewLockfile(m.manifest.Name, cliToolVersion)
	for _, name := range m.manifest.ModuleNames() {
		spec := m.manifest.Modules[name]
		var (
			locked *driver.LockedModule
			err    error
		)
		if spec.IsGit() {
			locked, err = m.git.Fetch(name, spec)
		} else {
			locked, err = m.lockPath(name, spec)
		}
		if err != nil {
			return nil, false, err
		}
		log.Debug(log.DEPS, "locked %s %s from %s", locked.Name, locked.Version, locked.Source)
		lock.Put(locked)
	}
	return lock, lockChanged(previous, lock), nil
}

func (m *moduleInstaller) lockPath(name string, spec *driver.ModuleSpec) (*driver.LockedModule, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(m.manifest.Dir(), dir)
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("module %s: %s is not a directory", name, dir)
	}

	version := "local"
	if nested, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestFileName)); err == nil {
		if nested.Version != "" {
			version = nested.Version
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("module %s: %w", name, err)
	}

	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, fmt.Errorf("module %s: checksum %s: %w", name, dir, err)
	}
	return &driver.LockedModule{
		Name:     name,
		Version:  version,
		Source:   "path:" + dir,
		Checksum: checksum,
	}, nil
}

func lockChanged(previous, next *driver.Lockfile) bool {
	if previous == nil || len(previous.Modules) != len(next.Modules) {
		return true
	}
	for _, mod := range next.Modules {
		old, ok := previous.FindModule(mod.Name)
		if !ok || *old != *mod {
			return true
		}
	}
	return false
}
