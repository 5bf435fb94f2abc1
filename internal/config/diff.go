// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// ChangeSummary describes the result of comparing two documents.
type ChangeSummary struct {
	Added   []string // paths present only in the new document
	Removed []string // paths present only in the old document
	Changed []string // paths whose value or kind differs
}

// Empty reports whether the documents are equivalent.
func (s ChangeSummary) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0 && len(s.Changed) == 0
}

// Paths returns every affected path: added, then removed, then changed.
func (s ChangeSummary) Paths() []string {
	out := make([]string, 0, len(s.Added)+len(s.Removed)+len(s.Changed))
	out = append(out, s.Added...)
	out = append(out, s.Removed...)
	return append(out, s.Changed...)
}

// Diff compares two documents. Mappings are compared key by key; sequences
// and scalars are compared whole.
func Diff(old, next *Document) ChangeSummary {
	var s ChangeSummary
	s.compare("", old.Root(), next.Root())
	return s
}

func (s *ChangeSummary) compare(path string, a, b *Value) {
	if a.Kind() == KindMapping && b.Kind() == KindMapping {
		for _, k := range a.keys {
			child := joinPath(path, k)
			if nb, ok := b.entries[k]; ok {
				s.compare(child, a.entries[k], nb)
				continue
			}
			s.Removed = append(s.Removed, child)
		}
		for _, k := range b.keys {
			if _, ok := a.entries[k]; !ok {
				s.Added = append(s.Added, joinPath(path, k))
			}
		}
		return
	}
	if !Equal(a, b) {
		s.Changed = append(s.Changed, path)
	}
}
