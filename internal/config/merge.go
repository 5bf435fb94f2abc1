// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "github.com/google/uuid"

// Merge overlays overrides on defaults and returns a new document.
// For keys present in both, the override wins; two mappings merge key by key,
// anything else (sequences, scalars, kind changes) is replaced whole.
// Keys keep the defaults' order, new keys follow in override order.
// Neither input is modified.
func Merge(defaults, overrides *Document) *Document {
	name := overrides.Name
	if name == "" {
		name = defaults.Name
	}
	return &Document{
		Name:   name,
		LoadID: uuid.NewString(),
		root:   mergeValues(defaults.Root(), overrides.Root()),
	}
}

func mergeValues(base, over *Value) *Value {
	if base.Kind() != KindMapping || over.Kind() != KindMapping {
		return Clone(over)
	}

	entries := make([]Entry, 0, len(base.keys)+len(over.keys))
	for _, k := range base.keys {
		b := base.entries[k]
		if o, ok := over.entries[k]; ok {
			entries = append(entries, Entry{Key: k, Value: mergeValues(b, o)})
			continue
		}
		entries = append(entries, Entry{Key: k, Value: Clone(b)})
	}
	for _, k := range over.keys {
		if _, ok := base.entries[k]; ok {
			continue
		}
		entries = append(entries, Entry{Key: k, Value: Clone(over.entries[k])})
	}

	out := Map(entries...)
	out.Line, out.Column = over.Line, over.Column
	return out
}
