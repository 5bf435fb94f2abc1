// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	_ "embed"
	"fmt"
	"sync"
)

var (
	//go:embed defaults.yaml
	defaultsYAML []byte
	//go:embed technologies.yaml
	technologiesYAML []byte

	defaultsOnce    sync.Once
	defaultsDoc     *Document
	technologiesDoc *Document
)

func loadEmbedded() {
	defaultsDoc = mustParseEmbedded("defaults.yaml", defaultsYAML)
	technologiesDoc = mustParseEmbedded("technologies.yaml", technologiesYAML)
}

func mustParseEmbedded(name string, data []byte) *Document {
	root, err := parseDocument(name, data)
	if err != nil {
		panic(fmt.Sprintf("config: embedded %s: %v", name, err))
	}
	return NewDocument(name, root)
}

// Defaults returns the shared model inputs (temperatures, energy cost, CO2
// factors and model flags) as a fresh document suitable for Merge.
func Defaults() *Document {
	defaultsOnce.Do(loadEmbedded)
	return defaultsDoc.Clone()
}

// TechnologyDefaults returns the parameter defaults of one technology section.
func TechnologyDefaults(section string) (*Value, bool) {
	defaultsOnce.Do(loadEmbedded)
	v, ok := technologiesDoc.Section(section)
	if !ok {
		return nil, false
	}
	return Clone(v), true
}

// WithTechnologyDefaults fills unset parameters of every technology the
// document declares. Technologies that are not declared stay absent.
func WithTechnologyDefaults(doc *Document) *Document {
	defaultsOnce.Do(loadEmbedded)

	entries := make([]Entry, 0, doc.root.Len())
	for _, key := range doc.root.keys {
		val := doc.root.entries[key]
		if base, ok := technologiesDoc.Section(key); ok && val.Kind() == KindMapping {
			entries = append(entries, Entry{Key: key, Value: mergeValues(base, val)})
			continue
		}
		entries = append(entries, Entry{Key: key, Value: Clone(val)})
	}
	return NewDocument(doc.Name, Map(entries...))
}
