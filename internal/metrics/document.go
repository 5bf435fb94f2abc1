// SPDX-License-Identifier: MIT
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeReadError  = "read_error"
	OutcomeParseError = "parse_error"
	OutcomeValid      = "valid"
	OutcomeInvalid    = "invalid"
)

var (
	documentLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esconf_document_loads_total",
		Help: "Configuration document loads by outcome",
	}, []string{"outcome"}) // outcome=ok|read_error|parse_error

	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esconf_validations_total",
		Help: "Document validations by outcome",
	}, []string{"outcome"}) // outcome=valid|invalid

	schemaViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esconf_schema_violations_total",
		Help: "Schema violations found during validation, by rule",
	}, []string{"rule"})

	unknownSectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esconf_unknown_sections_total",
		Help: "Unknown top-level sections passed through with a warning",
	})

	inactiveTechnologies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "esconf_inactive_technologies",
		Help: "Technologies sized to zero in the last validated document",
	})

	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esconf_reloads_total",
		Help: "Watched document reloads by outcome",
	}, []string{"outcome"}) // outcome=ok|read_error|parse_error|invalid

	missingSources = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "esconf_missing_sources",
		Help: "Referenced series sources not found in the last source check",
	})
)

func RecordLoad(outcome string) { documentLoadsTotal.WithLabelValues(outcome).Inc() }

// RecordValidation records one validation run. violations maps rule name to count.
func RecordValidation(violations map[string]int, warnings, inactive int) {
	if len(violations) == 0 {
		validationsTotal.WithLabelValues(OutcomeValid).Inc()
	} else {
		validationsTotal.WithLabelValues(OutcomeInvalid).Inc()
	}
	for rule, n := range violations {
		schemaViolationsTotal.WithLabelValues(rule).Add(float64(n))
	}
	unknownSectionsTotal.Add(float64(warnings))
	inactiveTechnologies.Set(float64(inactive))
}

func RecordReload(outcome string) { reloadsTotal.WithLabelValues(outcome).Inc() }

func SetMissingSources(n int) { missingSources.Set(float64(n)) }

// WriteTextfile dumps the default registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
