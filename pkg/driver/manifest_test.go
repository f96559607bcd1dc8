package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: kitchen-scripts
version: "0.1.0"
authors:
  - Ada
  - Grace
scripts:
  tea: recipes/tea.scriic
  toast: recipes/toast.scriic
modules:
  basics: ../basics
  pantry:
    path: vendor/pantry
  baking:
    git: https://example.com/baking.git
    tag: v1.2.0
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if got, want := manifest.Name, "kitchen_scripts"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if manifest.Version != "0.1.0" {
		t.Fatalf("Version = %q, want 0.1.0", manifest.Version)
	}
	if len(manifest.Authors) != 2 || manifest.Authors[1] != "Grace" {
		t.Fatalf("Authors unexpected: %#v", manifest.Authors)
	}
	if len(manifest.Scripts) != 2 || manifest.Scripts[0].Name != "tea" || manifest.Scripts[1].Name != "toast" {
		t.Fatalf("Scripts out of order: %#v", manifest.Scripts)
	}
	entry, ok := manifest.FindScript("toast")
	if !ok || entry.Path != "recipes/toast.scriic" {
		t.Fatalf("FindScript(toast) = %#v, %v", entry, ok)
	}
	if _, ok := manifest.FindScript("coffee"); ok {
		t.Fatalf("FindScript(coffee) should fail")
	}

	if got := strings.Join(manifest.ModuleNames(), ","); got != "baking,basics,pantry" {
		t.Fatalf("ModuleNames() = %q", got)
	}
	if spec := manifest.Modules["basics"]; spec.Path != "../basics" || spec.IsGit() {
		t.Fatalf("basics shorthand not parsed: %#v", spec)
	}
	if spec := manifest.Modules["baking"]; !spec.IsGit() || spec.Tag != "v1.2.0" {
		t.Fatalf("baking not parsed: %#v", spec)
	}
	if manifest.Dir() != filepath.Dir(path) {
		t.Fatalf("Dir() = %q", manifest.Dir())
	}
	if manifest.LockfilePath() != filepath.Join(filepath.Dir(path), LockfileName) {
		t.Fatalf("LockfilePath() = %q", manifest.LockfilePath())
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
authors: [""]
scripts:
  empty: ""
modules:
  both:
    path: here
    git: https://example.com/x.git
    rev: abc
  neither: {}
  unpinned:
    git: https://example.com/y.git
  pinned_twice:
    git: https://example.com/z.git
    tag: v1
    branch: main
  scriicsics: ./mine
  local_pin:
    path: ./x
    rev: abc
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	want := []string{
		"name must be provided",
		"authors[0] must be a non-empty string",
		`script "empty" requires a path`,
		"modules.both: cannot specify both path and git",
		"modules.local_pin: rev, tag, and branch only apply to git modules",
		"modules.neither: must specify path or git",
		"modules.pinned_twice: only one of rev, tag, or branch may be set",
		"modules.scriicsics: name is reserved",
		"modules.unpinned: git modules require rev, tag, or branch",
	}
	if got := strings.Join(verr.Issues, "\n"); got != strings.Join(want, "\n") {
		t.Fatalf("Issues =\n%s\nwant\n%s", got, strings.Join(want, "\n"))
	}
	if !strings.HasPrefix(err.Error(), "manifest validation failed:\n- name must be provided") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: kitchen
flavour: spicy
`)
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "flavour") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestFileName), "name: kitchen")
	nested := filepath.Join(root, "recipes", "drinks")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(nested, "tea.scriic"), "HOWTO Tea")

	got, err := FindManifest(filepath.Join(nested, "tea.scriic"))
	if err != nil {
		t.Fatalf("FindManifest error: %v", err)
	}
	if got != filepath.Join(root, ManifestFileName) {
		t.Fatalf("FindManifest = %q", got)
	}
}

func TestFindManifestNotFound(t *testing.T) {
	_, err := FindManifest(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}
