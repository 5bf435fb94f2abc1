// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// Clone returns an alias-free deep copy of a value tree, positions included.
func Clone(in *Value) *Value {
	if in == nil {
		return nil
	}
	out := &Value{
		kind:    in.kind,
		num:     in.num,
		integer: in.integer,
		flag:    in.flag,
		str:     in.str,
		Line:    in.Line,
		Column:  in.Column,
	}
	switch in.kind {
	case KindMapping:
		out.keys = make([]string, len(in.keys))
		copy(out.keys, in.keys)
		out.entries = make(map[string]*Value, len(in.entries))
		for k, v := range in.entries {
			out.entries[k] = Clone(v)
		}
	case KindSequence:
		out.items = make([]*Value, len(in.items))
		for i, v := range in.items {
			out.items[i] = Clone(v)
		}
	}
	return out
}
