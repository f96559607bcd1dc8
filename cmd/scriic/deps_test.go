package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlphaMycelium/scriic/pkg/driver"
)

func TestModuleInstallerPathModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "scriic.yml"), `
name: app
modules:
  tools: ../tools
  plain:
    path: ../plain
`)
	writeFile(t, filepath.Join(root, "tools", "scriic.yml"), `
name: tools
version: 0.2.0
`)
	writeFile(t, filepath.Join(root, "tools", "saw.scriic"), "HOWTO Saw\nDO Saw the plank")
	writeFile(t, filepath.Join(root, "plain", "nail.scriic"), "HOWTO Nail\nDO Hammer the nail")

	manifest, err := driver.LoadManifest(filepath.Join(root, "app", "scriic.yml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	installer := newModuleInstaller(manifest, filepath.Join(root, "cache"))
	lock, changed, err := installer.Install(nil)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a new lockfile to count as changed")
	}
	if len(lock.Modules) != 2 {
		t.Fatalf("lock modules = %#v", lock.Modules)
	}
	tools, ok := lock.FindModule("tools")
	if !ok {
		t.Fatalf("missing tools entry")
	}
	if tools.Version != "0.2.0" {
		t.Fatalf("tools.Version = %q", tools.Version)
	}
	if tools.Source != "path:"+filepath.Join(root, "tools") {
		t.Fatalf("tools.Source = %q", tools.Source)
	}
	if tools.Checksum == "" {
		t.Fatalf("expected a checksum")
	}
	plain, ok := lock.FindModule("plain")
	if !ok || plain.Version != "local" {
		t.Fatalf("plain entry = %#v", plain)
	}

	again, changed, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("second Install error: %v", err)
	}
	if changed {
		t.Fatalf("unchanged modules should not change the lockfile: %#v", again.Modules)
	}

	writeFile(t, filepath.Join(root, "plain", "nail.scriic"), "HOWTO Nail\nDO Hammer the nail twice")
	if _, changed, err = installer.Install(lock); err != nil || !changed {
		t.Fatalf("edited module should change the lockfile (changed=%v, err=%v)", changed, err)
	}
}

func TestModuleInstallerMissingPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "scriic.yml"), `
name: app
modules:
  ghost: ../ghost
`)
	manifest, err := driver.LoadManifest(filepath.Join(root, "app", "scriic.yml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, _, err = newModuleInstaller(manifest, filepath.Join(root, "cache")).Install(nil)
	if err == nil || !strings.Contains(err.Error(), "module ghost") {
		t.Fatalf("expected error naming the module, got %v", err)
	}
}

func TestModuleInstallerGitModule(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "scriic.yml"), `
name: garden
version: 0.3.0
`)
	writeFile(t, filepath.Join(repo, "plants", "water.scriic"), "HOWTO Water <plant>\nDO Water the [plant]")
	rev := initGitRepo(t, repo)

	writeFile(t, filepath.Join(root, "app", "scriic.yml"), `
name: app
modules:
  garden:
    git: `+repo+`
    rev: `+rev+`
`)
	manifest, err := driver.LoadManifest(filepath.Join(root, "app", "scriic.yml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	cacheDir := filepath.Join(root, "cache")
	lock, changed, err := newModuleInstaller(manifest, cacheDir).Install(nil)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if !changed {
		t.Fatalf("expected lockfile change for git module")
	}
	garden, ok := lock.FindModule("garden")
	if !ok {
		t.Fatalf("missing garden entry: %#v", lock.Modules)
	}
	if want := fmt.Sprintf("git+%s@%s", repo, rev); garden.Source != want {
		t.Fatalf("garden.Source = %q, want %q", garden.Source, want)
	}
	if garden.Version != rev {
		t.Fatalf("garden.Version = %q, want %q", garden.Version, rev)
	}
	checkout := driver.GitCheckoutDir(cacheDir, "garden", garden.Version)
	if _, err := os.Stat(filepath.Join(checkout, "plants", "water.scriic")); err != nil {
		t.Fatalf("expected checkout at %s: %v", checkout, err)
	}

	roots, err := driver.ManifestModuleRoots(manifest, lock, cacheDir)
	if err != nil {
		t.Fatalf("ManifestModuleRoots error: %v", err)
	}
	if len(roots) != 2 || roots[1].Dir != checkout {
		t.Fatalf("roots = %#v", roots)
	}
}

func TestModuleInstallerGitBranch(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "sweep.scriic"), "HOWTO Sweep\nDO Sweep the floor")
	rev := initGitRepo(t, repo)

	writeFile(t, filepath.Join(root, "app", "scriic.yml"), `
name: app
modules:
  chores:
    git: `+repo+`
    branch: master
`)
	manifest, err := driver.LoadManifest(filepath.Join(root, "app", "scriic.yml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock, _, err := newModuleInstaller(manifest, filepath.Join(root, "cache")).Install(nil)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	chores, ok := lock.FindModule("chores")
	if !ok {
		t.Fatalf("missing chores entry")
	}
	if want := "master@" + rev; chores.Version != want {
		t.Fatalf("chores.Version = %q, want %q", chores.Version, want)
	}
}

func TestDepsInstallCommand(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "water.scriic"), `
HOWTO Water the <plant>
DO Fill the watering can
DO Pour the water over the [plant]
`)
	rev := initGitRepo(t, repo)

	project := filepath.Join(root, "project")
	writeFile(t, filepath.Join(project, "scriic.yml"), `
name: allotment
scripts:
  morning: morning.scriic
modules:
  garden:
    git: `+repo+`
    rev: `+rev+`
`)
	writeFile(t, filepath.Join(project, "morning.scriic"), `
HOWTO Do the morning jobs
SUB garden:water.scriic
PRM plant = tomatoes
GO
`)

	tc := newTestCLI(t, project, "")
	tc.expectRun(t, 1, "morning")
	if !strings.Contains(tc.stderr.String(), "deps install") {
		t.Fatalf("expected a hint to install modules, got %q", tc.stderr)
	}

	tc.stdout.Reset()
	tc.expectRun(t, 0, "deps", "install")
	if !strings.HasPrefix(tc.stdout.String(), "garden "+rev) {
		t.Fatalf("stdout = %q", tc.stdout)
	}
	lock, err := driver.LoadLockfile(filepath.Join(project, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if lock.Root != "allotment" || lock.Tool != cliToolVersion {
		t.Fatalf("lockfile metadata = %#v", lock)
	}
	if _, ok := lock.FindModule("garden"); !ok {
		t.Fatalf("lockfile missing garden: %#v", lock.Modules)
	}

	tc.stdout.Reset()
	tc.expectRun(t, 0, "morning")
	want := "1. Fill the watering can\n2. Pour the water over the tomatoes\n"
	if got := tc.stdout.String(); got != want {
		t.Fatalf("stdout =\n%s\nwant\n%s", got, want)
	}
}

func TestDepsCommandErrors(t *testing.T) {
	tc := newTestCLI(t, t.TempDir(), "")
	tc.expectRun(t, 1, "deps")
	tc.expectRun(t, 1, "deps", "upgrade")
	tc.expectRun(t, 1, "deps", "install", "extra")
	tc.expectRun(t, 1, "deps", "install")
	if !strings.Contains(tc.stderr.String(), driver.ManifestFileName+" not found") {
		t.Fatalf("stderr = %q", tc.stderr)
	}
}
