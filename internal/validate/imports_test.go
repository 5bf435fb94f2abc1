// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLayeringRules enforces the package layering of the module: the
// validator, logger and path helpers are leaves, the document package never reaches into
// the CLI, and metrics stay independent of the document model.
func TestLayeringRules(t *testing.T) {
	projectRoot := findProjectRoot(t)

	violations := []string{}

	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal/validate",
		"github.com/ManuGH/esconf/internal",
		"validate is a leaf package",
	)...)

	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal/log",
		"github.com/ManuGH/esconf/internal",
		"log is a leaf package",
	)...)

	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal/fsutil",
		"github.com/ManuGH/esconf/internal",
		"fsutil is a leaf package",
	)...)

	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal/metrics",
		"github.com/ManuGH/esconf/internal/config",
		"metrics must not depend on the document model",
	)...)

	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal",
		"github.com/ManuGH/esconf/cmd",
		"internal packages must not import command packages",
	)...)

	if len(violations) > 0 {
		t.Errorf("Layering violations detected:\n\n%s", strings.Join(violations, "\n"))
	}
}

// TestNoUtilsPackages keeps grab-bag packages out of the tree.
func TestNoUtilsPackages(t *testing.T) {
	projectRoot := findProjectRoot(t)
	for _, name := range []string{"utils", "util", "common", "helpers"} {
		if _, err := os.Stat(filepath.Join(projectRoot, "internal", name)); err == nil {
			t.Errorf("internal/%s exists; place code in a package named after what it does", name)
		}
	}
}

// --- Helper Functions ---

func checkForbiddenImport(t *testing.T, projectRoot, sourceDir, forbiddenImportPrefix, reason string) []string {
	return checkForbiddenImportExcept(t, projectRoot, sourceDir, forbiddenImportPrefix, nil, reason)
}

func checkForbiddenImportExcept(t *testing.T, projectRoot, sourceDir, forbiddenImportPrefix string, allowedImports []string, reason string) []string {
	t.Helper()

	sourcePath := filepath.Join(projectRoot, sourceDir)
	files, err := findGoFiles(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Directory doesn't exist - no violation
		}
		t.Fatalf("Failed to scan %s: %v", sourceDir, err)
	}

	// Build set of allowed imports for fast lookup
	allowedSet := make(map[string]bool)
	for _, allowed := range allowedImports {
		allowedSet[allowed] = true
	}

	violations := []string{}
	for _, file := range files {
		imports, err := extractImports(file)
		if err != nil {
			t.Logf("Warning: failed to parse %s: %v", file, err)
			continue
		}

		for _, imp := range imports {
			if strings.HasPrefix(imp, forbiddenImportPrefix) {
				// Check if this import is explicitly allowed
				if allowedSet[imp] {
					continue
				}
				relPath, _ := filepath.Rel(projectRoot, file)
				violations = append(violations, fmt.Sprintf(
					"  ❌ %s imports %s\n     Reason: %s",
					relPath, imp, reason,
				))
			}
		}
	}

	return violations
}

func findGoFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func extractImports(filePath string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	imports := []string{}
	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		imports = append(imports, importPath)
	}
	return imports, nil
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	// Walk up until we find go.mod
	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("Could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
