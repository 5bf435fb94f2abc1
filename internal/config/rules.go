// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/esconf/internal/validate"
)

// fractionTolerance absorbs float rounding when per-level fractions are summed.
const fractionTolerance = 1e-9

// Rule checks the value found at path and records violations on v.
type Rule func(v *validate.Validator, path string, val *Value)

// ruleFor returns the leaf rule for a field kind. Sections have no leaf rule.
func ruleFor(f *Field) Rule {
	switch f.Kind {
	case FieldNumber:
		return isNumber(f.Bound)
	case FieldSeries:
		return isSeries(f.Bound)
	case FieldLevels:
		return isLevels(f.Bound)
	case FieldFractions:
		return isFractions(f.Bound)
	case FieldNumberList:
		return isNumberList(f.Bound)
	case FieldBool:
		return isBool
	default:
		return nil
	}
}

func typeViolation(v *validate.Validator, path, want string, val *Value) {
	v.Add(validate.Error{
		Field:   path,
		Rule:    validate.RuleType,
		Value:   val.String(),
		Line:    val.Line,
		Message: fmt.Sprintf("expected %s, got %s", want, val.Kind()),
	})
}

func isNumber(b validate.Bound) Rule {
	return func(v *validate.Validator, path string, val *Value) {
		f, ok := val.Float()
		if !ok {
			typeViolation(v, path, "number", val)
			return
		}
		v.InBounds(path, f, b, val.Line)
	}
}

func isBool(v *validate.Validator, path string, val *Value) {
	if _, ok := val.Bool(); !ok {
		typeViolation(v, path, "bool", val)
	}
}

// isSeries accepts a reference string or a numeric constant within b.
func isSeries(b validate.Bound) Rule {
	return func(v *validate.Validator, path string, val *Value) {
		switch val.Kind() {
		case KindNumber:
			f, _ := val.Float()
			v.InBounds(path, f, b, val.Line)
		case KindString:
			s, _ := val.Text()
			if _, err := ParseReference(s); err != nil {
				v.Add(validate.Error{
					Field:   path,
					Rule:    validate.RuleReference,
					Value:   s,
					Line:    val.Line,
					Message: strings.TrimPrefix(err.Error(), ErrMalformedReference.Error()+": "),
				})
			}
		default:
			typeViolation(v, path, "number or series reference", val)
		}
	}
}

// isLevels accepts a single series or a non-empty mapping of level name to series.
func isLevels(b validate.Bound) Rule {
	single := isSeries(b)
	return func(v *validate.Validator, path string, val *Value) {
		if val.Kind() != KindMapping {
			single(v, path, val)
			return
		}
		if val.Len() == 0 {
			v.Add(validate.Error{Field: path, Rule: validate.RuleType, Line: val.Line,
				Message: "per-level mapping must name at least one level"})
			return
		}
		for _, level := range val.Keys() {
			child, _ := val.Get(level)
			single(v, joinPath(path, level), child)
		}
	}
}

// isFractions accepts one fraction or a mapping of level to fraction whose sum is at most 1.
func isFractions(b validate.Bound) Rule {
	single := isNumber(b)
	return func(v *validate.Validator, path string, val *Value) {
		switch val.Kind() {
		case KindNumber:
			single(v, path, val)
		case KindMapping:
			sum, clean := 0.0, true
			for _, level := range val.Keys() {
				child, _ := val.Get(level)
				before := len(v.Errors())
				single(v, joinPath(path, level), child)
				if len(v.Errors()) != before {
					clean = false
					continue
				}
				f, _ := child.Float()
				sum += f
			}
			if clean && sum > 1+fractionTolerance {
				v.Add(validate.Error{
					Field:   path,
					Rule:    validate.RuleConsistency,
					Value:   sum,
					Line:    val.Line,
					Message: fmt.Sprintf("fractions sum to %g, must be at most 1", sum),
				})
			}
		default:
			typeViolation(v, path, "fraction or mapping of level to fraction", val)
		}
	}
}

func isNumberList(b validate.Bound) Rule {
	item := isNumber(b)
	return func(v *validate.Validator, path string, val *Value) {
		if val.Kind() != KindSequence {
			typeViolation(v, path, "list of numbers", val)
			return
		}
		for i, it := range val.Items() {
			item(v, indexPath(path, i), it)
		}
	}
}

func numberAt(sec *Value, name string) (float64, *Value, bool) {
	child, ok := sec.Get(name)
	if !ok {
		return 0, nil, false
	}
	f, ok := child.Float()
	return f, child, ok
}

// above requires field hi to be strictly greater than field lo when both are set.
func above(hi, lo string) Check {
	return func(v *validate.Validator, path string, sec *Value) {
		h, hv, okH := numberAt(sec, hi)
		l, _, okL := numberAt(sec, lo)
		if !okH || !okL || h > l {
			return
		}
		v.Add(validate.Error{
			Field:   joinPath(path, hi),
			Rule:    validate.RuleConsistency,
			Value:   h,
			Line:    hv.Line,
			Message: fmt.Sprintf("must be greater than %s (%g)", lo, l),
		})
	}
}

// sumAtMost requires the named fields that are set to add up to at most limit.
func sumAtMost(limit float64, names ...string) Check {
	return func(v *validate.Validator, path string, sec *Value) {
		sum, line := 0.0, 0
		for _, name := range names {
			f, fv, ok := numberAt(sec, name)
			if !ok {
				return
			}
			sum += f
			if line == 0 {
				line = fv.Line
			}
		}
		if sum <= limit+fractionTolerance {
			return
		}
		v.Add(validate.Error{
			Field:   path,
			Rule:    validate.RuleConsistency,
			Value:   sum,
			Line:    line,
			Message: fmt.Sprintf("%s sum to %g, must be at most %g", strings.Join(names, " + "), sum, limit),
		})
	}
}

// unitSuffix marks keys that declare the unit of a sibling field, as written
// by exporters that keep "<field>_unit" (or "_<field>_unit") next to each value.
const unitSuffix = "_unit"

// checkUnitAnnotation reports whether key is a unit annotation and, if so,
// validates it. Annotations of known fields must name the schema unit;
// annotations of other quantities are informational.
func checkUnitAnnotation(v *validate.Validator, sec *Section, path, key string, val *Value) bool {
	name, ok := strings.CutSuffix(strings.TrimPrefix(key, "_"), unitSuffix)
	if !ok || name == "" {
		return false
	}
	if val.IsNull() {
		return true
	}
	declared, isText := val.Text()
	if !isText {
		typeViolation(v, path, "unit string", val)
		return true
	}
	f, known := sec.Field(name)
	if !known || f.Kind == FieldSection || sameUnit(declared, f.Unit) {
		return true
	}
	v.Add(validate.Error{
		Field:   path,
		Rule:    validate.RuleConsistency,
		Value:   declared,
		Line:    val.Line,
		Message: fmt.Sprintf("unit %q of %s does not match %q; values are not converted", declared, name, displayUnit(f.Unit)),
	})
	return true
}

func sameUnit(declared, want string) bool {
	declared = strings.TrimSpace(declared)
	if want == UnitRatio || want == "" {
		return declared == "" || declared == UnitRatio
	}
	return declared == want
}

func displayUnit(u string) string {
	if u == "" {
		return UnitRatio
	}
	return u
}
