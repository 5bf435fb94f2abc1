// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Accessors(t *testing.T) {
	v := Map(
		Entry{Key: "b", Value: Int(1)},
		Entry{Key: "a", Value: Seq(Number(0.5), String("x"))},
		Entry{Key: "b", Value: Bool(true)},
		Entry{Key: "n", Value: nil},
	)

	assert.Equal(t, []string{"b", "a", "n"}, v.Keys(), "repeated key keeps first position")
	b, _ := v.Get("b")
	flag, ok := b.Bool()
	assert.True(t, ok)
	assert.True(t, flag)

	n, ok := v.Get("n")
	require.True(t, ok)
	assert.True(t, n.IsNull())

	item, ok := v.Lookup("a[1]")
	require.True(t, ok)
	s, _ := item.Text()
	assert.Equal(t, "x", s)

	_, ok = v.Lookup("a[2]")
	assert.False(t, ok)
	_, ok = v.Lookup("b.c")
	assert.False(t, ok)

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 0, Int(3).Len())

	keys := v.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "b", v.Keys()[0], "Keys returns a copy")
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		value *Value
		want  string
	}{
		{Null(), "null"},
		{Int(3500), "3500"},
		{Number(3), "3.0"},
		{Number(0.98), "0.98"},
		{Number(1e-6), "1e-06"},
		{Number(math.Inf(1)), ".inf"},
		{Bool(false), "false"},
		{String("pv:PV"), `"pv:PV"`},
		{Map(), "mapping(0)"},
		{Seq(Int(1)), "sequence(1)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.value.String())
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(1), Number(1)))
	assert.True(t, Equal(Number(math.NaN()), Number(math.NaN())))
	assert.False(t, Equal(Int(0), String("0")))
	assert.True(t, Equal(
		Map(Entry{Key: "a", Value: Int(1)}, Entry{Key: "b", Value: Int(2)}),
		Map(Entry{Key: "b", Value: Int(2)}, Entry{Key: "a", Value: Int(1)}),
	))
	assert.False(t, Equal(Seq(Int(1), Int(2)), Seq(Int(2), Int(1))))
	assert.False(t, Equal(Map(Entry{Key: "a", Value: Int(1)}), Map(Entry{Key: "b", Value: Int(1)})))
	assert.True(t, Equal(nil, Null()))
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("x", nil)
	assert.Empty(t, doc.Sections())
	assert.NotEmpty(t, doc.LoadID)

	assert.Panics(t, func() { NewDocument("x", Int(1)) })

	withNull := NewDocument("x", Map(Entry{Key: "pv", Value: Null()}))
	_, ok := withNull.Section("pv")
	assert.False(t, ok)
}
