// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/esconf/internal/validate"
)

var (
	// ErrMalformedReference classifies strings that are not "<source>:<field>".
	// Use errors.Is(err, ErrMalformedReference) instead of string matching.
	ErrMalformedReference = errors.New("malformed series reference")
	// ErrNotScalar is returned when a mapping, sequence, bool or null is resolved as a series.
	ErrNotScalar = errors.New("value is not a number or series reference")
	// ErrMissingLevel is returned by Broadcast when a per-level mapping lacks a requested level.
	ErrMissingLevel = errors.New("missing level")
	// ErrNoLevels is returned by Broadcast when a single series has no levels to fan out to.
	ErrNoLevels = errors.New("no levels to broadcast to")
	// ErrUnsupportedFormat is wrapped by ParseError for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// ParseError reports a document that could not be read into a value tree.
type ParseError struct {
	File   string
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	if e.File != "" {
		b.WriteString(e.File)
	} else {
		b.WriteString("<input>")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ":%d", e.Column)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError carries every violation found by Validate.
type SchemaError struct {
	File       string
	Violations []validate.Error
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	prefix := "schema"
	if e.File != "" {
		prefix = e.File
	}
	return fmt.Sprintf("%s: %d violation(s): %s", prefix, len(e.Violations), strings.Join(msgs, "; "))
}

// ByPath returns the violations recorded for one field path.
func (e *SchemaError) ByPath(path string) []validate.Error {
	var out []validate.Error
	for _, v := range e.Violations {
		if v.Field == path {
			out = append(out, v)
		}
	}
	return out
}

// UnknownSectionWarning marks a top-level key that no schema section describes.
// Its contents are passed through unvalidated.
type UnknownSectionWarning struct {
	Section string
	Line    int
}

func (w UnknownSectionWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("unknown section %q (line %d)", w.Section, w.Line)
	}
	return fmt.Sprintf("unknown section %q", w.Section)
}
