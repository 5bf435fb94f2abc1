// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLoad(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{name: "success", outcome: OutcomeOK},
		{name: "unreadable file", outcome: OutcomeReadError},
		{name: "syntax error", outcome: OutcomeParseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(documentLoadsTotal.WithLabelValues(tt.outcome))
			RecordLoad(tt.outcome)
			after := testutil.ToFloat64(documentLoadsTotal.WithLabelValues(tt.outcome))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordValidation(t *testing.T) {
	validBefore := testutil.ToFloat64(validationsTotal.WithLabelValues(OutcomeValid))
	invalidBefore := testutil.ToFloat64(validationsTotal.WithLabelValues(OutcomeInvalid))
	boundsBefore := testutil.ToFloat64(schemaViolationsTotal.WithLabelValues("bounds"))
	unknownBefore := testutil.ToFloat64(unknownSectionsTotal)

	RecordValidation(nil, 0, 2)
	assert.Equal(t, validBefore+1, testutil.ToFloat64(validationsTotal.WithLabelValues(OutcomeValid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(inactiveTechnologies))

	RecordValidation(map[string]int{"bounds": 3}, 1, 0)
	assert.Equal(t, invalidBefore+1, testutil.ToFloat64(validationsTotal.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, boundsBefore+3, testutil.ToFloat64(schemaViolationsTotal.WithLabelValues("bounds")))
	assert.Equal(t, unknownBefore+1, testutil.ToFloat64(unknownSectionsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(inactiveTechnologies))
}

func TestReloadAndSources(t *testing.T) {
	before := testutil.ToFloat64(reloadsTotal.WithLabelValues(OutcomeInvalid))
	RecordReload(OutcomeInvalid)
	assert.Equal(t, before+1, testutil.ToFloat64(reloadsTotal.WithLabelValues(OutcomeInvalid)))

	SetMissingSources(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(missingSources))
}

func TestPromhttpExposure(t *testing.T) {
	RecordLoad(OutcomeOK)

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWriteTextfile(t *testing.T) {
	RecordLoad(OutcomeOK)
	path := filepath.Join(t.TempDir(), "esconf.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `esconf_document_loads_total{outcome="ok"}`))
}
