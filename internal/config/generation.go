// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"sort"
	"strconv"
)

// GenerationShape is how a generation field was written.
type GenerationShape int

const (
	// ShapeSingle is one series applied to every level.
	ShapeSingle GenerationShape = iota + 1
	// ShapePerLevel is a mapping from level name to series.
	ShapePerLevel
)

func (s GenerationShape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapePerLevel:
		return "per_level"
	default:
		return "unknown"
	}
}

// ShapeOf classifies a generation value. Only scalars and mappings have a shape.
func ShapeOf(v *Value) (GenerationShape, error) {
	switch v.Kind() {
	case KindNumber, KindString:
		return ShapeSingle, nil
	case KindMapping:
		return ShapePerLevel, nil
	default:
		return 0, fmt.Errorf("%w: generation cannot be a %s", ErrNotScalar, v.Kind())
	}
}

// Broadcast resolves a generation value for each requested level.
// A single series is shared by all levels; a per-level mapping must name every
// requested level. With no levels given, a per-level mapping yields its own keys.
func Broadcast(v *Value, levels []string) (map[string]Resolved, error) {
	shape, err := ShapeOf(v)
	if err != nil {
		return nil, err
	}

	if shape == ShapeSingle {
		if len(levels) == 0 {
			return nil, ErrNoLevels
		}
		r, err := ResolveReference(v)
		if err != nil {
			return nil, err
		}
		out := make(map[string]Resolved, len(levels))
		for _, lvl := range levels {
			out[lvl] = r
		}
		return out, nil
	}

	if len(levels) == 0 {
		levels = v.Keys()
	}
	out := make(map[string]Resolved, len(levels))
	for _, lvl := range levels {
		child, ok := v.Get(lvl)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingLevel, lvl)
		}
		r, err := ResolveReference(child)
		if err != nil {
			return nil, fmt.Errorf("level %q: %w", lvl, err)
		}
		out[lvl] = r
	}
	return out, nil
}

// TemperatureLevels derives the heat network's level names from the
// temperatures section: forward flow, domestic hot water and any additional
// levels, ascending and de-duplicated. Missing entries fall back to Defaults.
func TemperatureLevels(doc *Document) []string {
	temps := func(d *Document) *Value {
		v, _ := d.Section("temperatures")
		return v
	}
	own, base := temps(doc), temps(Defaults())

	pick := func(name string) (float64, bool) {
		if f, _, ok := numberAt(own, name); ok {
			return f, true
		}
		f, _, ok := numberAt(base, name)
		return f, ok
	}

	seen := make(map[float64]struct{})
	var values []float64
	add := func(f float64) {
		if _, dup := seen[f]; dup {
			return
		}
		seen[f] = struct{}{}
		values = append(values, f)
	}
	for _, name := range []string{"forward_flow", "dhw"} {
		if f, ok := pick(name); ok {
			add(f)
		}
	}
	if extra, ok := own.Get("additional"); ok {
		for _, it := range extra.Items() {
			if f, ok := it.Float(); ok {
				add(f)
			}
		}
	}

	sort.Float64s(values)
	out := make([]string, len(values))
	for i, f := range values {
		out[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return out
}

// SolarThermalGeneration selects solar thermal yield per temperature level.
func SolarThermalGeneration(doc *Document) (map[string]Resolved, error) {
	st, ok := doc.Section("solar_thermal")
	if !ok {
		return nil, nil
	}
	gen, ok := st.Get("spec_generation")
	if !ok {
		return nil, fmt.Errorf("solar_thermal.spec_generation: %w", ErrNotScalar)
	}
	return Broadcast(gen, TemperatureLevels(doc))
}
