package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Scriic CLI",
			Email: "scriic@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

type testCLI struct {
	*cli
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestCLI isolates a command from the user's environment: it runs in a
// fresh working directory with its own SCRIIC_HOME and no SCRIIC_PATH.
func newTestCLI(t *testing.T, workDir, stdin string) *testCLI {
	t.Helper()
	t.Chdir(workDir)
	t.Setenv("SCRIIC_HOME", filepath.Join(t.TempDir(), "home"))
	t.Setenv("SCRIIC_PATH", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testCLI{
		cli:    &cli{stdin: strings.NewReader(stdin), stdout: stdout, stderr: stderr},
		stdout: stdout,
		stderr: stderr,
	}
}

func (tc *testCLI) expectRun(t *testing.T, want int, args ...string) {
	t.Helper()
	if code := tc.run(args); code != want {
		t.Fatalf("run(%q) = %d, want %d\nstdout:\n%s\nstderr:\n%s", args, code, want, tc.stdout, tc.stderr)
	}
}
