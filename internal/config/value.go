// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the variant tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one node of a configuration document.
// Values are never modified after construction; operations that change a
// document build new trees.
type Value struct {
	kind    Kind
	num     float64
	integer bool
	flag    bool
	str     string
	keys    []string
	entries map[string]*Value
	items   []*Value

	// Line and Column locate the node in its source file (1-based, 0 if unknown).
	Line   int
	Column int
}

// Entry is a key/value pair used to build mappings.
type Entry struct {
	Key   string
	Value *Value
}

func Null() *Value { return &Value{kind: KindNull} }

func Number(f float64) *Value { return &Value{kind: KindNumber, num: f} }

func Int(i int64) *Value { return &Value{kind: KindNumber, num: float64(i), integer: true} }

func Bool(b bool) *Value { return &Value{kind: KindBool, flag: b} }

func String(s string) *Value { return &Value{kind: KindString, str: s} }

// Map builds a mapping. A repeated key keeps its first position and the last value.
func Map(entries ...Entry) *Value {
	v := &Value{kind: KindMapping, entries: make(map[string]*Value, len(entries))}
	for _, e := range entries {
		if _, ok := v.entries[e.Key]; !ok {
			v.keys = append(v.keys, e.Key)
		}
		v.entries[e.Key] = orNull(e.Value)
	}
	return v
}

func Seq(items ...*Value) *Value {
	v := &Value{kind: KindSequence, items: make([]*Value, len(items))}
	for i, it := range items {
		v.items[i] = orNull(it)
	}
	return v
}

func orNull(v *Value) *Value {
	if v == nil {
		return Null()
	}
	return v
}

// Kind reports the variant; a nil Value is null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// Float returns the numeric payload.
func (v *Value) Float() (float64, bool) {
	if v.Kind() != KindNumber {
		return 0, false
	}
	return v.num, true
}

// IsInteger reports whether the number was written as an integer literal.
func (v *Value) IsInteger() bool {
	return v.Kind() == KindNumber && v.integer
}

func (v *Value) Bool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.flag, true
}

func (v *Value) Text() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.str, true
}

// Keys returns the mapping keys in document order.
func (v *Value) Keys() []string {
	if v.Kind() != KindMapping {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Get returns the value stored under key in a mapping.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindMapping {
		return nil, false
	}
	child, ok := v.entries[key]
	return child, ok
}

// Len returns the number of mapping entries or sequence items.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindMapping:
		return len(v.keys)
	case KindSequence:
		return len(v.items)
	default:
		return 0
	}
}

func (v *Value) Items() []*Value {
	if v.Kind() != KindSequence {
		return nil
	}
	out := make([]*Value, len(v.items))
	copy(out, v.items)
	return out
}

// Lookup follows a dotted path ("energy_cost.electricity.market") through
// nested mappings. Sequence items are addressed as "additional[1]".
func (v *Value) Lookup(path string) (*Value, bool) {
	cur := v
	if path == "" {
		return cur, cur != nil
	}
	for _, part := range strings.Split(path, ".") {
		name, idx, hasIdx := splitIndex(part)
		next, ok := cur.Get(name)
		if !ok {
			return nil, false
		}
		if hasIdx {
			if next.Kind() != KindSequence || idx < 0 || idx >= len(next.items) {
				return nil, false
			}
			next = next.items[idx]
		}
		cur = next
	}
	return cur, true
}

func splitIndex(part string) (string, int, bool) {
	open := strings.IndexByte(part, '[')
	if open < 0 || !strings.HasSuffix(part, "]") {
		return part, 0, false
	}
	idx, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil {
		return part, 0, false
	}
	return part[:open], idx, true
}

// Plain converts the tree into map[string]any / []any / float64 / bool /
// string / nil. Key order is lost.
func (v *Value) Plain() any {
	switch v.Kind() {
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindString:
		return v.str
	case KindMapping:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.entries[k].Plain()
		}
		return out
	case KindSequence:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Plain()
		}
		return out
	default:
		return nil
	}
}

// String renders scalars the way they appear in YAML; containers are summarised.
func (v *Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindNumber:
		return formatNumber(v.num, v.integer)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindString:
		return strconv.Quote(v.str)
	case KindMapping:
		return fmt.Sprintf("mapping(%d)", len(v.keys))
	default:
		return fmt.Sprintf("sequence(%d)", len(v.items))
	}
}

// Equal reports semantic equality: same kinds and payloads, mappings compared
// irrespective of key order. Positions and the integer flag are ignored.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindNumber:
		return a.num == b.num || (math.IsNaN(a.num) && math.IsNaN(b.num))
	case KindBool:
		return a.flag == b.flag
	case KindString:
		return a.str == b.str
	case KindMapping:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for _, k := range a.keys {
			other, ok := b.entries[k]
			if !ok || !Equal(a.entries[k], other) {
				return false
			}
		}
		return true
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func formatNumber(f float64, integer bool) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	case integer:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
