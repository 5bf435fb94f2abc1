// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SeriesHandle
		wantErr bool
	}{
		{name: "simple", input: "generation.csv:PV", want: SeriesHandle{Source: "generation.csv", Field: "PV"}},
		{name: "field with spaces", input: "co2.csv:grid mix", want: SeriesHandle{Source: "co2.csv", Field: "grid mix"}},
		{name: "split at first colon", input: "prices.csv:2024:day ahead", want: SeriesHandle{Source: "prices.csv", Field: "2024:day ahead"}},
		{name: "file prefix", input: "FILE:weather.csv:temp_air", want: SeriesHandle{Source: "weather.csv", Field: "temp_air"}},
		{name: "source named FILE", input: "FILE:PV", want: SeriesHandle{Source: "FILE", Field: "PV"}},
		{name: "no separator", input: "generation.csv", wantErr: true},
		{name: "empty source", input: ":PV", wantErr: true},
		{name: "empty field", input: "generation.csv:", wantErr: true},
		{name: "blank field", input: "generation.csv:   ", wantErr: true},
		{name: "whitespace in source", input: "my data.csv:PV", wantErr: true},
		{name: "leading space in field", input: "generation.csv: PV", wantErr: true},
		{name: "trailing space in field", input: "generation.csv:PV ", wantErr: true},
		{name: "zero as text", input: "0", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedReference))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Source+":"+tt.want.Field, got.String())
		})
	}
}

func TestParseReference_NormalizesUnicode(t *testing.T) {
	decomposed := "la\u0308st.csv:Wa\u0308rme"
	got, err := ParseReference(decomposed)
	require.NoError(t, err)
	assert.Equal(t, SeriesHandle{Source: "l\u00e4st.csv", Field: "W\u00e4rme"}, got)
}

func TestResolveReference(t *testing.T) {
	t.Run("series reference", func(t *testing.T) {
		r, err := ResolveReference(String("generation.csv:PV"))
		require.NoError(t, err)
		require.True(t, r.IsSeries())
		assert.Equal(t, SeriesHandle{Source: "generation.csv", Field: "PV"}, *r.Series)
		assert.False(t, r.IsZero())
	})

	t.Run("zero shorthand", func(t *testing.T) {
		r, err := ResolveReference(Int(0))
		require.NoError(t, err)
		assert.False(t, r.IsSeries())
		assert.True(t, r.IsZero())
		assert.Equal(t, "0", r.String())
	})

	t.Run("constant", func(t *testing.T) {
		r, err := ResolveReference(Number(0.427))
		require.NoError(t, err)
		assert.Equal(t, 0.427, r.Literal)
		assert.False(t, r.IsZero())
	})

	t.Run("quoted zero is a malformed reference", func(t *testing.T) {
		_, err := ResolveReference(String("0"))
		assert.True(t, errors.Is(err, ErrMalformedReference))
	})

	for _, v := range []*Value{Map(), Seq(), Bool(true), Null(), nil} {
		t.Run("not scalar "+v.Kind().String(), func(t *testing.T) {
			_, err := ResolveReference(v)
			assert.True(t, errors.Is(err, ErrNotScalar))
		})
	}
}

func TestReferences(t *testing.T) {
	doc := loadFixture(t, "valid.yaml")

	refs := References(doc)
	require.Len(t, refs, 11)

	assert.Equal(t, "meteorology.temp_air", refs[0].Path)
	assert.Equal(t, SeriesHandle{Source: "weather.csv", Field: "temp_air"}, refs[0].Handle)
	assert.Positive(t, refs[0].Line)

	byPath := make(map[string]SeriesHandle, len(refs))
	for _, r := range refs {
		byPath[r.Path] = r.Handle
	}
	assert.Equal(t, SeriesHandle{Source: "co2.csv", Field: "grid mix"}, byPath["co2.el_in"])
	assert.Equal(t, SeriesHandle{Source: "solar.csv", Field: "st_60"}, byPath["solar_thermal.spec_generation.60"])
	assert.NotContains(t, byPath, "wind_turbine.spec_generation")
}
