package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlphaMycelium/scriic/pkg/driver"
	"github.com/AlphaMycelium/scriic/pkg/log"
	"github.com/AlphaMycelium/scriic/pkg/scriicsics"
)

// loadManifestFrom finds the nearest scriic.yml above start. A missing
// manifest is not an error; the result is then nil.
func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	log.Verbose("using manifest %s", manifest.Path)
	return manifest, nil
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(manifest.LockfilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return lock, nil
}

// locateEntry works out which script a command-line target names and which
// manifest applies to it. An existing file wins over a manifest script name.
func locateEntry(target string) (string, *driver.Manifest, error) {
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		manifest, err := loadManifestFrom(filepath.Dir(target))
		return target, manifest, err
	}
	manifest, err := loadManifestFrom(".")
	if err != nil {
		return "", nil, err
	}
	if manifest != nil {
		if entry, ok := manifest.FindScript(target); ok {
			path := filepath.FromSlash(entry.Path)
			if !filepath.IsAbs(path) {
				path = filepath.Join(manifest.Dir(), path)
			}
			log.Debug(log.RESOLVE, "script %s -> %s", target, path)
			return path, manifest, nil
		}
	}
	return target, manifest, nil
}

// newLoader mounts the bundled library, the manifest's modules and every
// SCRIIC_PATH directory on one resolver.
func newLoader(manifest *driver.Manifest) (*driver.Loader, error) {
	resolver := driver.NewFileResolver()
	if err := scriicsics.Mount(resolver); err != nil {
		return nil, err
	}

	var roots []driver.ModuleRoot
	if manifest != nil {
		lock, err := loadLockfileForManifest(manifest)
		if err != nil {
			return nil, err
		}
		home, err := resolveScriicHome()
		if err != nil {
			return nil, err
		}
		manifestRoots, err := driver.ManifestModuleRoots(manifest, lock, home)
		if err != nil {
			return nil, err
		}
		roots = append(roots, manifestRoots...)
	}
	pathRoots, err := driver.DiscoverModuleRoots(splitPathListEnv(os.Getenv("SCRIIC_PATH")))
	if err != nil {
		return nil, err
	}
	for _, root := range pathRoots {
		if !containsRoot(roots, root) {
			roots = append(roots, root)
		}
	}

	if err := resolver.MountAll(roots); err != nil {
		return nil, fmt.Errorf("mount modules: %w", err)
	}
	for _, name := range resolver.Modules() {
		if dir, ok := resolver.Root(name); ok {
			log.Debug(log.RESOLVE, "module %s -> %s", name, dir)
		}
	}
	return driver.NewLoader(resolver), nil
}

func containsRoot(roots []driver.ModuleRoot, root driver.ModuleRoot) bool {
	for _, existing := range roots {
		if existing == root {
			return true
		}
	}
	return false
}
