// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// filePrefix is the legacy "FILE:<source>:<field>" spelling of a reference.
const filePrefix = "FILE:"

// SeriesHandle names an external time series: a column of a data source.
// The data itself is never opened here.
type SeriesHandle struct {
	Source string
	Field  string
}

func (h SeriesHandle) String() string { return h.Source + ":" + h.Field }

// Resolved is a leaf classified as either a constant or a series handle.
type Resolved struct {
	Series  *SeriesHandle
	Literal float64
}

func (r Resolved) IsSeries() bool { return r.Series != nil }

// IsZero reports the zero-series shorthand.
func (r Resolved) IsZero() bool { return r.Series == nil && r.Literal == 0 }

func (r Resolved) String() string {
	if r.Series != nil {
		return r.Series.String()
	}
	return strconv.FormatFloat(r.Literal, 'g', -1, 64)
}

// ResolveReference classifies a leaf. Numbers are constant series;
// strings must be well-formed references.
func ResolveReference(v *Value) (Resolved, error) {
	switch v.Kind() {
	case KindNumber:
		f, _ := v.Float()
		return Resolved{Literal: f}, nil
	case KindString:
		s, _ := v.Text()
		h, err := ParseReference(s)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Series: &h}, nil
	default:
		return Resolved{}, fmt.Errorf("%w: got %s", ErrNotScalar, v.Kind())
	}
}

// ParseReference splits "<source>:<field>" at the first colon.
// The source may not contain whitespace; the field may contain spaces and
// further colons but no leading or trailing whitespace.
func ParseReference(s string) (SeriesHandle, error) {
	body := s
	if rest, ok := strings.CutPrefix(s, filePrefix); ok && strings.Contains(rest, ":") {
		body = rest
	}
	source, field, ok := strings.Cut(body, ":")
	if !ok {
		return SeriesHandle{}, fmt.Errorf("%w: %q has no ':' separator", ErrMalformedReference, s)
	}
	if source == "" {
		return SeriesHandle{}, fmt.Errorf("%w: %q has an empty source", ErrMalformedReference, s)
	}
	if strings.IndexFunc(source, unicode.IsSpace) >= 0 {
		return SeriesHandle{}, fmt.Errorf("%w: source %q contains whitespace", ErrMalformedReference, source)
	}
	if strings.TrimSpace(field) == "" {
		return SeriesHandle{}, fmt.Errorf("%w: %q has an empty field", ErrMalformedReference, s)
	}
	if strings.TrimSpace(field) != field {
		return SeriesHandle{}, fmt.Errorf("%w: field %q has surrounding whitespace", ErrMalformedReference, field)
	}
	return SeriesHandle{Source: norm.NFC.String(source), Field: norm.NFC.String(field)}, nil
}

// Reference is a series reference found in a document.
type Reference struct {
	Path   string
	Handle SeriesHandle
	Line   int
}

// References lists every well-formed reference leaf in document order.
// Strings that do not parse as references are skipped.
func References(doc *Document) []Reference {
	var out []Reference
	walkLeaves(doc.Root(), "", func(path string, v *Value) {
		s, ok := v.Text()
		if !ok {
			return
		}
		h, err := ParseReference(s)
		if err != nil {
			return
		}
		out = append(out, Reference{Path: path, Handle: h, Line: v.Line})
	})
	return out
}

// walkLeaves visits every non-container node with its dotted path.
func walkLeaves(v *Value, path string, fn func(path string, v *Value)) {
	switch v.Kind() {
	case KindMapping:
		for _, k := range v.keys {
			walkLeaves(v.entries[k], joinPath(path, k), fn)
		}
	case KindSequence:
		for i, it := range v.items {
			walkLeaves(it, indexPath(path, i), fn)
		}
	default:
		fn(path, v)
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func indexPath(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}
