// Package testutil locates shared test fixtures from any package in the module.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fixtureDir holds the configuration documents shared by package tests.
const fixtureDir = "internal/config/testdata"

// RepoRoot returns the repository root by walking up to the nearest go.mod.
func RepoRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("cannot determine caller")
	}
	dir := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("go.mod not found")
}

// Fixture returns the path of a shared configuration fixture or fails the test
// when it does not exist.
func Fixture(t testing.TB, name string) string {
	t.Helper()
	root, err := RepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	path := filepath.Join(root, filepath.FromSlash(fixtureDir), name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return path
}

// CopyFixture copies a shared fixture into a fresh temporary directory and
// returns the copy's path, for tests that rewrite documents in place.
func CopyFixture(t testing.TB, name string) string {
	t.Helper()
	data, err := os.ReadFile(Fixture(t, name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("copy fixture %s: %v", name, err)
	}
	return path
}
