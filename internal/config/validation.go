// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	xglog "github.com/ManuGH/esconf/internal/log"
	"github.com/ManuGH/esconf/internal/metrics"
	"github.com/ManuGH/esconf/internal/validate"
)

// generationField is the key holding generation series in every generator section.
const generationField = "spec_generation"

// Result is what Validate learned about a document besides its violations.
type Result struct {
	// Warnings lists unknown top-level sections; their contents are not validated.
	Warnings []UnknownSectionWarning
	// Shapes records the generation shape of every spec_generation field by path.
	Shapes map[string]GenerationShape
	// Inactive lists technologies whose sizing field is zero or negative.
	Inactive []string
	// References lists every series reference in document order.
	References []Reference
}

// IsActive reports whether a present technology takes part in the model.
func (r *Result) IsActive(section string) bool {
	for _, s := range r.Inactive {
		if s == section {
			return false
		}
	}
	return true
}

// Validate checks every known section against its field set, bounds and
// reference syntax. All violations are collected into one *SchemaError.
// The Result is returned even when validation fails.
func Validate(doc *Document) (*Result, error) {
	reg, err := GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("schema registry: %w", err)
	}

	logger := xglog.WithComponent("config").With().
		Str(xglog.FieldLoadID, doc.LoadID).
		Str(xglog.FieldPath, doc.Name).
		Logger()

	v := validate.New()
	res := &Result{Shapes: make(map[string]GenerationShape)}
	root := doc.Root()

	for _, key := range root.Keys() {
		val, _ := root.Get(key)
		if sec, ok := reg.BySection[key]; ok {
			if val.IsNull() {
				continue
			}
			validateSection(v, res, sec, key, val)
			continue
		}
		if flag, ok := reg.ByFlag[key]; ok {
			if !val.IsNull() {
				ruleFor(flag)(v, key, val)
			}
			continue
		}
		res.Warnings = append(res.Warnings, UnknownSectionWarning{Section: key, Line: val.Line})
		logger.Warn().
			Str(xglog.FieldEvent, "config.unknown_section").
			Str(xglog.FieldSection, key).
			Int(xglog.FieldLine, val.Line).
			Msg("unknown section passed through without validation")
	}

	for _, sec := range reg.Sections {
		if !sec.Required {
			continue
		}
		_, present := doc.Section(sec.Name)
		v.Require(sec.Name, present, 0)
	}

	res.References = References(doc)

	byRule := make(map[string]int)
	for _, e := range v.Errors() {
		byRule[e.Rule]++
	}
	metrics.RecordValidation(byRule, len(res.Warnings), len(res.Inactive))

	if !v.IsValid() {
		violations := v.Errors()
		logger.Info().
			Str(xglog.FieldEvent, "config.validation_failed").
			Int(xglog.FieldViolations, len(violations)).
			Int(xglog.FieldWarnings, len(res.Warnings)).
			Msg("configuration document is invalid")
		return res, &SchemaError{File: doc.Name, Violations: violations}
	}

	logger.Debug().
		Str(xglog.FieldEvent, "config.validated").
		Int(xglog.FieldWarnings, len(res.Warnings)).
		Strs("inactive", res.Inactive).
		Msg("configuration document is valid")
	return res, nil
}

func validateSection(v *validate.Validator, res *Result, sec *Section, path string, val *Value) {
	if val.Kind() != KindMapping {
		typeViolation(v, path, "mapping", val)
		return
	}

	inactive := false
	if sf, ok := sec.SizingField(); ok {
		if f, _, isNum := numberAt(val, sf.Name); isNum && f <= 0 {
			inactive = true
			res.Inactive = append(res.Inactive, path)
		}
	}

	before := len(v.Errors())
	for _, key := range val.Keys() {
		child, _ := val.Get(key)
		fieldPath := joinPath(path, key)
		f, ok := sec.Field(key)
		if !ok && checkUnitAnnotation(v, sec, fieldPath, key, child) {
			continue
		}
		if !ok {
			v.Add(validate.Error{
				Field:   fieldPath,
				Rule:    validate.RuleUnknown,
				Line:    child.Line,
				Message: fmt.Sprintf("unknown field in section %s", sec.Name),
			})
			continue
		}
		if child.IsNull() {
			continue
		}
		if f.Kind == FieldSection {
			validateSection(v, res, f.Section, fieldPath, child)
			continue
		}
		ruleFor(f)(v, fieldPath, child)
		if f.Kind == FieldLevels || f.Name == generationField {
			if shape, err := ShapeOf(child); err == nil {
				res.Shapes[fieldPath] = shape
			}
		}
	}

	// Required inputs of a switched-off technology may be omitted.
	if !inactive {
		for i := range sec.Fields {
			f := &sec.Fields[i]
			if !f.Required {
				continue
			}
			child, ok := val.Get(f.Name)
			v.Require(joinPath(path, f.Name), ok && !child.IsNull(), val.Line)
		}
	}

	if len(v.Errors()) != before {
		return
	}
	for _, check := range sec.Checks {
		check(v, path, val)
	}
}
