// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_RoundTrip(t *testing.T) {
	for _, fixture := range []string{"valid.yaml", "minimal.yaml", "invalid_efficiency.yaml"} {
		t.Run(fixture, func(t *testing.T) {
			doc := loadFixture(t, fixture)

			data, err := Marshal(doc)
			require.NoError(t, err)

			again, err := LoadBytes("roundtrip.yaml", data)
			require.NoError(t, err)

			assert.True(t, Equal(doc.Root(), again.Root()), "round trip changed the document:\n%s", data)
			assert.Equal(t, doc.Sections(), again.Sections())
			if diff := cmp.Diff(doc.Root().Plain(), again.Root().Plain()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal_RoundTripBuiltinDefaults(t *testing.T) {
	doc := Defaults()

	data, err := Marshal(doc)
	require.NoError(t, err)

	again, err := LoadBytes("defaults-copy.yaml", data)
	require.NoError(t, err, "%s", data)
	assert.True(t, Equal(doc.Root(), again.Root()), "%s", data)
	assert.Contains(t, string(data), "additional: []")
}

func TestMarshal_EmptyContainersAndAmbiguousStrings(t *testing.T) {
	doc := NewDocument("edge.yaml", Map(
		Entry{Key: "temperatures", Value: Map(
			Entry{Key: "additional", Value: Seq()},
		)},
		Entry{Key: "solar_thermal", Value: Map(
			Entry{Key: "spec_generation", Value: Map()},
		)},
		Entry{Key: "custom", Value: Map(
			Entry{Key: "<<", Value: String("<<")},
			Entry{Key: "50", Value: String("true")},
			Entry{Key: "date", Value: String("2024-01-01")},
			Entry{Key: "empty", Value: Map()},
		)},
	))

	data, err := Marshal(doc)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "additional: []")
	assert.Contains(t, out, "spec_generation: {}")
	assert.Contains(t, out, `"<<": "<<"`)

	again, err := LoadBytes("edge-copy.yaml", data)
	require.NoError(t, err, "%s", data)
	assert.True(t, Equal(doc.Root(), again.Root()), "%s", data)

	v, ok := again.Lookup("custom.50")
	require.True(t, ok)
	assert.Equal(t, KindString, v.Kind())
}

func TestMarshal_PreservesScalarKinds(t *testing.T) {
	doc := mustLoad(t, "kinds.yaml", `
pv:
  spec_generation: "0"
  nominal_power: 1.0
  feed_in_subsidy: 75
custom:
  flag: true
  nothing: null
  big: 1e21
  tiny: 0.000001
  levels:
    40: 0.5
`)
	data, err := Marshal(doc)
	require.NoError(t, err)

	again, err := LoadBytes("again.yaml", data)
	require.NoError(t, err)

	sg, _ := again.Lookup("pv.spec_generation")
	assert.Equal(t, KindString, sg.Kind(), "quoted zero must stay a string")

	np, _ := again.Lookup("pv.nominal_power")
	assert.False(t, np.IsInteger(), "float literal must stay a float")

	fis, _ := again.Lookup("pv.feed_in_subsidy")
	assert.True(t, fis.IsInteger())

	assert.True(t, Equal(doc.Root(), again.Root()), "%s", data)
}

func TestMarshal_UnitComments(t *testing.T) {
	doc := loadFixture(t, "valid.yaml")

	data, err := Marshal(doc)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "thermal_output: 0.5 # MW")
	assert.Contains(t, out, "demand_rate: 15000 # €/MW")
	assert.Contains(t, out, "reference: 20 # °C")
	assert.Contains(t, out, "area: 100 # m²")
	assert.NotContains(t, out, "efficiency: 0.95 #", "dimensionless fields carry no unit")
	assert.False(t, strings.Contains(out, "# District heating"), "source comments are not preserved")
}

func TestSave(t *testing.T) {
	doc := loadFixture(t, "valid.yaml")
	path := filepath.Join(t.TempDir(), "nested", "plant.yaml")

	require.NoError(t, Save(path, doc))

	saved, err := Load(path)
	require.NoError(t, err)
	assert.True(t, Equal(doc.Root(), saved.Root()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	// Overwrite in place.
	require.NoError(t, Save(path, mustLoad(t, "small.yaml", "pv:\n  nominal_power: 2\n")))
	saved, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pv"}, saved.Sections())
}
