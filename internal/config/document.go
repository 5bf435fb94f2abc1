// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "github.com/google/uuid"

// Document is a loaded configuration: a root mapping keyed by section name.
// A Document is an immutable snapshot; Merge and Clone return new documents.
type Document struct {
	// Name is the source path or label the document was loaded from.
	Name string
	// LoadID correlates log lines of one load.
	LoadID string

	root *Value
}

// NewDocument wraps root, which must be a mapping. A nil root yields an empty document.
func NewDocument(name string, root *Value) *Document {
	if root == nil {
		root = Map()
	}
	if root.Kind() != KindMapping {
		panic("config: document root must be a mapping, got " + root.Kind().String())
	}
	return &Document{Name: name, LoadID: uuid.NewString(), root: root}
}

func (d *Document) Root() *Value { return d.root }

// Sections returns top-level keys in document order.
func (d *Document) Sections() []string { return d.root.Keys() }

// Section returns a top-level entry. A section whose value is null counts as absent.
func (d *Document) Section(name string) (*Value, bool) {
	v, ok := d.root.Get(name)
	if !ok || v.IsNull() {
		return nil, false
	}
	return v, true
}

func (d *Document) Lookup(path string) (*Value, bool) { return d.root.Lookup(path) }

// Clone returns an alias-free deep copy carrying a fresh load ID.
func (d *Document) Clone() *Document {
	return &Document{Name: d.Name, LoadID: uuid.NewString(), root: Clone(d.root)}
}
