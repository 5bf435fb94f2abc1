// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name, body string) *Document {
	t.Helper()
	doc, err := LoadBytes(name, []byte(body))
	require.NoError(t, err)
	return doc
}

func TestMerge_OverrideWins(t *testing.T) {
	defaults := mustLoad(t, "defaults.yaml", `
temperatures:
  forward_flow: 40
  backward_flow: 30
  additional: [50, 55]
energy_cost:
  gas:
    fossil_gas: 35
    biomethane: 95
allow_missing_heat: true
`)
	overrides := mustLoad(t, "plant.yaml", `
temperatures:
  forward_flow: 70
  additional: [65]
energy_cost:
  gas:
    biomethane: 80
  wood_pellet: 250
pv:
  spec_generation: generation.csv:PV
`)

	merged := Merge(defaults, overrides)

	want := map[string]any{
		"temperatures": map[string]any{
			"forward_flow":  70.0,
			"backward_flow": 30.0,
			"additional":    []any{65.0},
		},
		"energy_cost": map[string]any{
			"gas": map[string]any{
				"fossil_gas": 35.0,
				"biomethane": 80.0,
			},
			"wood_pellet": 250.0,
		},
		"allow_missing_heat": true,
		"pv": map[string]any{
			"spec_generation": "generation.csv:PV",
		},
	}
	if diff := cmp.Diff(want, merged.Root().Plain()); diff != "" {
		t.Errorf("merged document mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"temperatures", "energy_cost", "allow_missing_heat", "pv"}, merged.Sections())
	assert.Equal(t, "plant.yaml", merged.Name)
	assert.NotEqual(t, overrides.LoadID, merged.LoadID)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	defaults := Defaults()
	overrides := loadFixture(t, "valid.yaml")

	defaultsBefore := Clone(defaults.Root())
	overridesBefore := Clone(overrides.Root())

	merged := Merge(defaults, overrides)
	require.NotNil(t, merged)

	assert.True(t, Equal(defaultsBefore, defaults.Root()))
	assert.True(t, Equal(overridesBefore, overrides.Root()))

	// Merged subtrees are copies, not shared nodes.
	mv, _ := merged.Lookup("gas_boiler")
	ov, _ := overrides.Lookup("gas_boiler")
	assert.NotSame(t, ov, mv)
}

func TestMerge_KindChangeReplaces(t *testing.T) {
	defaults := mustLoad(t, "d.yaml", "solar_thermal:\n  spec_generation:\n    40: solar.csv:st_40\n")
	overrides := mustLoad(t, "o.yaml", "solar_thermal:\n  spec_generation: solar.csv:st\n")

	merged := Merge(defaults, overrides)
	v, ok := merged.Lookup("solar_thermal.spec_generation")
	require.True(t, ok)
	assert.Equal(t, KindString, v.Kind())
}

func TestMerge_WithDefaultsValidates(t *testing.T) {
	merged := Merge(Defaults(), loadFixture(t, "minimal.yaml"))

	res, err := Validate(merged)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	v, ok := merged.Lookup("energy_cost.electricity.eeg_levy")
	require.True(t, ok)
	assert.Equal(t, "64.123", v.String())
}

func TestClone(t *testing.T) {
	doc := loadFixture(t, "valid.yaml")
	clone := doc.Clone()

	assert.True(t, Equal(doc.Root(), clone.Root()))
	assert.NotSame(t, doc.Root(), clone.Root())
	assert.NotEqual(t, doc.LoadID, clone.LoadID)
	assert.Equal(t, doc.Sections(), clone.Sections())

	a, _ := doc.Lookup("temperatures.additional")
	b, _ := clone.Lookup("temperatures.additional")
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Line, b.Line)

	assert.Nil(t, Clone(nil))
}

func TestDiff(t *testing.T) {
	old := mustLoad(t, "old.yaml", `
gas_boiler:
  thermal_output: 0.5
  efficiency: 0.9
pv:
  nominal_power: 1
temperatures:
  additional: [50]
`)
	next := mustLoad(t, "next.yaml", `
temperatures:
  additional: [50, 55]
gas_boiler:
  efficiency: 0.9
  thermal_output: 0.6
chp:
  electric_output: 0.1
`)

	got := Diff(old, next)
	assert.Equal(t, []string{"chp"}, got.Added)
	assert.Equal(t, []string{"pv"}, got.Removed)
	assert.Equal(t, []string{"gas_boiler.thermal_output", "temperatures.additional"}, got.Changed)
	assert.False(t, got.Empty())
	assert.Len(t, got.Paths(), 4)
}

func TestDiff_IgnoresKeyOrderAndIntegerSpelling(t *testing.T) {
	a := mustLoad(t, "a.yaml", "pv:\n  nominal_power: 1\n  feed_in_subsidy: 75\n")
	b := mustLoad(t, "b.yaml", "pv:\n  feed_in_subsidy: 75.0\n  nominal_power: 1.0\n")
	assert.True(t, Diff(a, b).Empty())
}
