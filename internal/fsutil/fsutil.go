// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil resolves data-source paths named by series references.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a relative source resolves outside its base directory.
var ErrOutsideBase = errors.New("source escapes base directory")

// SourcePath returns the path a referenced source is read from.
// Absolute sources are returned cleaned. Relative sources are joined to
// baseDir and must stay underneath it after symlinks are resolved.
func SourcePath(baseDir, source string) (string, error) {
	if strings.Contains(source, "\\") {
		return "", fmt.Errorf("source contains backslash: %s", source)
	}
	if filepath.IsAbs(source) {
		return filepath.Clean(source), nil
	}

	rel := filepath.Clean(source)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, source)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}
	realBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		if os.IsNotExist(err) {
			return "", err
		}
		realBase = absBase
	}
	return confine(realBase, filepath.Join(realBase, rel))
}

// confine resolves symlinks of full (or of its parent when full does not
// exist) and checks that the result lies within realBase.
func confine(realBase, full string) (string, error) {
	var real string
	if _, err := os.Lstat(full); err == nil {
		rp, err := filepath.EvalSymlinks(full)
		if err != nil {
			return "", fmt.Errorf("resolve source path: %w", err)
		}
		real = rp
	} else {
		dir := filepath.Dir(full)
		rp, err := filepath.EvalSymlinks(dir)
		switch {
		case err == nil:
			real = filepath.Join(rp, filepath.Base(full))
		case isExisting(dir):
			return "", fmt.Errorf("resolve source directory: %w", err)
		default:
			real = full
		}
	}

	rel, err := filepath.Rel(realBase, real)
	if err != nil {
		return "", fmt.Errorf("relative source path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w via symlink: %s", ErrOutsideBase, real)
	}
	return real, nil
}

func isExisting(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsRegularFile returns an error unless path exists and is a regular file.
func IsRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}
