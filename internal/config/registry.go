// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"sync"

	"github.com/ManuGH/esconf/internal/validate"
)

// FieldKind describes the shape a field accepts.
type FieldKind string

const (
	FieldNumber     FieldKind = "number"
	FieldSeries     FieldKind = "series"    // reference or numeric constant
	FieldLevels     FieldKind = "levels"    // series, or mapping level -> series
	FieldFractions  FieldKind = "fractions" // fraction, or mapping level -> fraction, sum <= 1
	FieldNumberList FieldKind = "number list"
	FieldBool       FieldKind = "bool"
	FieldSection    FieldKind = "section"
)

// Units used by the schema.
const (
	UnitMW          = "MW"
	UnitMWh         = "MWh"
	UnitCelsius     = "°C"
	UnitKelvin      = "K"
	UnitRatio       = "1"
	UnitHoursPerYr  = "h/a"
	UnitPerHour     = "1/h"
	UnitEuroPerMWh  = "€/MWh"
	UnitEuroPerMW   = "€/MW"
	UnitEuroPerTon  = "€/t"
	UnitTonPerMWh   = "t/MWh"
	UnitSquareMeter = "m²"
	UnitCubicMeter  = "m³"
	UnitMeter       = "m"
	UnitMWhPerM3    = "MWh/m³"
)

// absoluteZero is the lower bound of every temperature field.
const absoluteZero = -273.15

// Field describes one key of a section.
type Field struct {
	Name     string
	Kind     FieldKind
	Unit     string
	Bound    validate.Bound
	Required bool
	// Sizing marks the field that switches a technology off when <= 0.
	Sizing  bool
	Section *Section
	Doc     string
}

// Check is a cross-field rule evaluated on a section whose fields are individually valid.
type Check func(v *validate.Validator, path string, sec *Value)

// Section describes a top-level or nested mapping of the document.
type Section struct {
	Name       string
	Doc        string
	Technology bool
	Required   bool
	Fields     []Field
	Checks     []Check

	byName map[string]*Field
}

// Field returns the schema entry for name.
func (s *Section) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// SizingField returns the field that deactivates the technology, if any.
func (s *Section) SizingField() (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Sizing {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Registry is the schema inventory: every known section, flag and field path.
type Registry struct {
	Sections []*Section
	Flags    []Field

	BySection map[string]*Section
	ByFlag    map[string]*Field
	// ByPath indexes every field by its dotted path ("energy_cost.gas.energy_tax").
	ByPath map[string]*Field
}

var (
	globalRegistry    *Registry
	globalRegistryErr error
	registryOnce      sync.Once
)

// GetRegistry returns the global schema registry.
// It returns an error if the registry contains duplicates.
func GetRegistry() (*Registry, error) {
	registryOnce.Do(func() {
		globalRegistry, globalRegistryErr = buildRegistry(schemaSections(), modelFlags())
	})
	return globalRegistry, globalRegistryErr
}

func buildRegistry(sections []*Section, flags []Field) (*Registry, error) {
	r := &Registry{
		Sections:  sections,
		Flags:     flags,
		BySection: make(map[string]*Section),
		ByFlag:    make(map[string]*Field),
		ByPath:    make(map[string]*Field),
	}
	for _, s := range sections {
		if _, dup := r.BySection[s.Name]; dup {
			return nil, fmt.Errorf("duplicate registry section: %s", s.Name)
		}
		r.BySection[s.Name] = s
		if err := r.index(s.Name, s); err != nil {
			return nil, err
		}
	}
	for i := range flags {
		f := &r.Flags[i]
		if _, dup := r.BySection[f.Name]; dup {
			return nil, fmt.Errorf("flag %s shadows a section", f.Name)
		}
		if _, dup := r.ByFlag[f.Name]; dup {
			return nil, fmt.Errorf("duplicate registry flag: %s", f.Name)
		}
		r.ByFlag[f.Name] = f
		r.ByPath[f.Name] = f
	}
	return r, nil
}

func (r *Registry) index(prefix string, s *Section) error {
	s.byName = make(map[string]*Field, len(s.Fields))
	sizers := 0
	for i := range s.Fields {
		f := &s.Fields[i]
		if _, dup := s.byName[f.Name]; dup {
			return fmt.Errorf("duplicate registry field: %s.%s", prefix, f.Name)
		}
		s.byName[f.Name] = f
		path := joinPath(prefix, f.Name)
		r.ByPath[path] = f
		if f.Sizing {
			sizers++
		}
		if f.Kind == FieldSection {
			if f.Section == nil {
				return fmt.Errorf("section field %s has no schema", path)
			}
			if err := r.index(path, f.Section); err != nil {
				return err
			}
		}
	}
	if sizers > 1 {
		return fmt.Errorf("section %s has %d sizing fields", prefix, sizers)
	}
	return nil
}

// Unit returns the declared unit of a field path, or "".
func (r *Registry) Unit(path string) string {
	if f, ok := r.ByPath[path]; ok {
		return f.Unit
	}
	return ""
}

// --- field constructors ---

func number(name, unit string, b validate.Bound, doc string) Field {
	return Field{Name: name, Kind: FieldNumber, Unit: unit, Bound: b, Doc: doc}
}

func power(name, doc string) Field {
	return number(name, UnitMW, validate.AtLeast(0), doc)
}

func efficiency(name, doc string) Field {
	return number(name, UnitRatio, validate.LeftOpen(0, 1), doc)
}

func fraction(name, doc string) Field {
	return number(name, UnitRatio, validate.Closed(0, 1), doc)
}

func temperature(name, doc string) Field {
	return number(name, UnitCelsius, validate.AtLeast(absoluteZero), doc)
}

func rate(name, unit, doc string) Field {
	return number(name, unit, validate.AtLeast(0), doc)
}

func series(name, unit string, b validate.Bound, doc string) Field {
	return Field{Name: name, Kind: FieldSeries, Unit: unit, Bound: b, Doc: doc}
}

func required(f Field) Field {
	f.Required = true
	return f
}

func sizing(f Field) Field {
	f.Sizing = true
	return f
}

func technology(name, doc string, fields ...Field) *Section {
	return &Section{Name: name, Doc: doc, Technology: true, Fields: fields}
}

func modelFlags() []Field {
	return []Field{
		{Name: "allow_missing_heat", Kind: FieldBool, Doc: "allow unmet heat demand (penalised)"},
		{Name: "exclusive_grid_connection", Kind: FieldBool, Doc: "forbid simultaneous grid import and export"},
	}
}

func schemaSections() []*Section {
	temperatures := &Section{
		Name: "temperatures",
		Doc:  "temperature levels of the heat network",
		Fields: []Field{
			temperature("reference", "reference temperature of the heat network"),
			temperature("dhw", "domestic hot water temperature"),
			number("heat_drop_exchanger_dhw", UnitKelvin, validate.AtLeast(0), "temperature drop across the DHW exchanger"),
			temperature("forward_flow", "forward flow temperature"),
			temperature("backward_flow", "backward flow temperature"),
			{Name: "additional", Kind: FieldNumberList, Unit: UnitCelsius, Bound: validate.AtLeast(absoluteZero),
				Doc: "additional intermediate temperature levels"},
		},
		Checks: []Check{
			above("forward_flow", "backward_flow"),
			above("dhw", "reference"),
		},
	}

	meteorology := &Section{
		Name:     "meteorology",
		Doc:      "weather series",
		Required: true,
		Fields: []Field{
			required(series("temp_air", UnitCelsius, validate.AtLeast(absoluteZero), "ambient air temperature")),
			required(series("temp_soil", UnitCelsius, validate.AtLeast(absoluteZero), "soil temperature")),
		},
	}

	demand := &Section{
		Name:     "demand",
		Doc:      "energy demand series",
		Required: true,
		Fields: []Field{
			required(series("electricity", UnitMW, validate.AtLeast(0), "electricity demand")),
			required(series("heating", UnitMW, validate.AtLeast(0), "space heating demand")),
			required(series("dhw", UnitMW, validate.AtLeast(0), "domestic hot water demand")),
		},
	}

	electricityCost := &Section{
		Name:     "electricity",
		Doc:      "electricity tariff",
		Required: true,
		Fields: []Field{
			rate("demand_rate", UnitEuroPerMW, "peak demand charge"),
			rate("slp_price", UnitEuroPerMWh, "standard load profile price"),
			rate("surcharge", UnitEuroPerMWh, "grid surcharges"),
			rate("eeg_levy", UnitEuroPerMWh, "renewable energy levy"),
			series("market", UnitEuroPerMWh, validate.AtLeast(0), "wholesale market price"),
		},
	}
	gasCost := &Section{
		Name:     "gas",
		Doc:      "gas prices",
		Required: true,
		Fields: []Field{
			rate("fossil_gas", UnitEuroPerMWh, "natural gas price"),
			rate("biomethane", UnitEuroPerMWh, "biomethane price"),
			rate("energy_tax", UnitEuroPerMWh, "energy tax on gas"),
		},
	}
	energyCost := &Section{
		Name:     "energy_cost",
		Doc:      "energy prices",
		Required: true,
		Fields: []Field{
			{Name: "electricity", Kind: FieldSection, Section: electricityCost, Required: true},
			{Name: "gas", Kind: FieldSection, Section: gasCost, Required: true},
			rate("wood_pellet", UnitEuroPerMWh, "wood pellet price"),
		},
	}

	co2 := &Section{
		Name:     "co2",
		Doc:      "emission factors and prices",
		Required: true,
		Fields: []Field{
			series("el_in", UnitTonPerMWh, validate.AtLeast(0), "emission factor of grid electricity"),
			series("el_out", UnitTonPerMWh, validate.AtLeast(0), "emission credit of exported electricity"),
			rate("fossil_gas", UnitTonPerMWh, "emission factor of natural gas"),
			rate("biomethane", UnitTonPerMWh, "emission factor of biomethane"),
			rate("wood_pellet", UnitTonPerMWh, "emission factor of wood pellets"),
			rate("price_el", UnitEuroPerTon, "CO2 price on electricity"),
			rate("price_gas", UnitEuroPerTon, "CO2 price on gas"),
		},
	}

	cop := number("cop_0_35", UnitRatio, validate.Above(1), "coefficient of performance at 0/35 °C")

	chp := technology("chp", "combined heat and power plant",
		fraction("biomethane_fraction", "share of biomethane in the gas input"),
		number("funding_hours_per_year", UnitHoursPerYr, validate.Closed(0, 8784), "subsidised full-load hours per year"),
		sizing(power("electric_output", "nominal electric output")),
		efficiency("electric_efficiency", "electric efficiency"),
		rate("feed_in_subsidy", UnitEuroPerMWh, "feed-in subsidy"),
		rate("own_consumption_subsidy", UnitEuroPerMWh, "own consumption subsidy"),
		power("thermal_output", "nominal thermal output"),
		efficiency("thermal_efficiency", "thermal efficiency"),
		power("gas_input", "nominal gas input"),
	)
	chp.Checks = []Check{sumAtMost(1, "electric_efficiency", "thermal_efficiency")}

	return []*Section{
		temperatures,
		meteorology,
		demand,
		energyCost,
		co2,
		technology("air_source_heat_pump", "air source heat pump",
			sizing(power("electric_input", "nominal electric input")),
			cop,
		),
		technology("heat_pump", "brine/water heat pump",
			sizing(power("electric_input", "nominal electric input")),
			power("thermal_output", "nominal thermal output"),
			cop,
		),
		technology("near_surface_heat_source", "near-surface geothermal collector",
			sizing(power("thermal_output", "extractable thermal power")),
		),
		technology("geothermal_heat_source", "borehole heat exchanger",
			sizing(power("thermal_output", "extractable thermal power")),
			temperature("temperature", "source temperature"),
		),
		technology("gas_boiler", "gas boiler",
			sizing(power("thermal_output", "nominal thermal output")),
			efficiency("efficiency", "conversion efficiency"),
		),
		technology("pellet_boiler", "wood pellet boiler",
			sizing(power("thermal_output", "nominal thermal output")),
			efficiency("efficiency", "conversion efficiency"),
		),
		technology("power_to_heat", "electric heating rod",
			sizing(power("thermal_output", "nominal thermal output")),
			efficiency("efficiency", "conversion efficiency"),
		),
		chp,
		technology("pv", "photovoltaics",
			required(series("spec_generation", UnitRatio, validate.AtLeast(0), "specific generation per MW peak")),
			sizing(power("nominal_power", "peak power")),
			rate("feed_in_subsidy", UnitEuroPerMWh, "feed-in subsidy"),
		),
		technology("wind_turbine", "wind turbine",
			required(series("spec_generation", UnitRatio, validate.AtLeast(0), "specific generation per MW nominal")),
			sizing(power("nominal_power", "nominal power")),
			rate("feed_in_tariff", UnitEuroPerMWh, "feed-in tariff"),
		),
		technology("solar_thermal", "solar thermal collectors",
			required(Field{Name: "spec_generation", Kind: FieldLevels, Unit: UnitMWh + "/" + UnitSquareMeter,
				Bound: validate.AtLeast(0), Doc: "specific yield, single series or per temperature level"}),
			sizing(number("area", UnitSquareMeter, validate.AtLeast(0), "collector area")),
		),
		technology("battery", "electrical battery",
			power("power", "charge and discharge power"),
			sizing(number("capacity", UnitMWh, validate.AtLeast(0), "storage capacity")),
			efficiency("efficiency_inflow", "charging efficiency"),
			efficiency("efficiency_outflow", "discharging efficiency"),
			number("self_discharge", UnitPerHour, validate.Closed(0, 1), "self-discharge rate"),
			fraction("initial_storage_level", "initial state of charge"),
		),
		technology("heat_storage", "layered hot water storage",
			sizing(number("volume", UnitCubicMeter, validate.AtLeast(0), "storage volume")),
			number("diameter", UnitMeter, validate.Above(0), "tank diameter"),
			number("insulation_thickness", UnitMeter, validate.AtLeast(0), "insulation thickness"),
			Field{Name: "initial_storage_levels", Kind: FieldFractions, Unit: UnitRatio, Bound: validate.Closed(0, 1),
				Doc: "initial fill per temperature level"},
		),
		technology("ice_storage", "ice storage",
			sizing(number("volume", UnitCubicMeter, validate.AtLeast(0), "storage volume")),
			number("height", UnitMeter, validate.Above(0), "tank height"),
			number("wall_thickness", UnitMeter, validate.Above(0), "wall thickness"),
			number("ceil_thickness", UnitMeter, validate.Above(0), "ceiling thickness"),
		),
		technology("thermal_ground_storage", "seasonal ground storage",
			sizing(number("volume", UnitCubicMeter, validate.AtLeast(0), "storage volume")),
			temperature("temperature", "ground temperature"),
			number("heat_capacity", UnitMWhPerM3, validate.Above(0), "volumetric heat capacity"),
		),
	}
}
