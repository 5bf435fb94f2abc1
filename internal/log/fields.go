// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldLoadID = "load_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Document fields
	FieldPath       = "path"
	FieldSection    = "section"
	FieldField      = "field"
	FieldRule       = "rule"
	FieldLine       = "line"
	FieldSource     = "source"
	FieldViolations = "violations"
	FieldWarnings   = "warnings"
	FieldChanged    = "changed"
)
