// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads, validates and serializes energy-system configuration
// documents.
//
// A document is a YAML mapping keyed by section (technologies, shared inputs
// such as temperatures, energy_cost and co2, and model flags). Leaves are
// numbers, bools, or series references of the form "<source>:<field>" that
// name a column of external time-series data. Load returns an immutable
// *Document; Validate checks it against the schema in registry.go and
// reports every violation at once.
package config
