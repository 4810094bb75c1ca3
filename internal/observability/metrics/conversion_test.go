package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewConversionMetrics(registry)
	require.NoError(t, err)

	m.RecordRun(ImporterYOLO, 3, 7, 2, 250*time.Millisecond)
	m.RecordRun(ImporterYOLO, 1, 1, 2, 50*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.runsTotal.WithLabelValues(ImporterYOLO, StatusSuccess)), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.imagesTotal.WithLabelValues(ImporterYOLO)), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(m.annotationsTotal.WithLabelValues(ImporterYOLO)), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.categoriesTotal.WithLabelValues(ImporterYOLO)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestRecordWarning(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewConversionMetrics(registry)
	require.NoError(t, err)

	testCases := []struct {
		importer string
		kind     string
		times    int
	}{
		{ImporterDeepWeeds, WarningMissingImage, 3},
		{ImporterDeepWeeds, WarningDuplicateImage, 1},
		{ImporterYOLO, WarningUnmatchedAnnotation, 2},
		{ImporterYOLO, WarningMalformedLine, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.importer+"/"+tc.kind, func(t *testing.T) {
			for range tc.times {
				m.RecordWarning(tc.importer, tc.kind)
			}
			got := testutil.ToFloat64(m.warningsTotal.WithLabelValues(tc.importer, tc.kind))
			assert.InDelta(t, float64(tc.times), got, 0)
		})
	}
}

func TestRecordValidation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewConversionMetrics(registry)
	require.NoError(t, err)

	m.RecordValidation("compatible-coco", 0)
	m.RecordValidation("weedcoco", 4)

	expected := `
# HELP weedcoco_validation_violations_total Total number of schema violations found
# TYPE weedcoco_validation_violations_total counter
weedcoco_validation_violations_total{schema="weedcoco"} 4
`
	require.NoError(t, testutil.CollectAndCompare(m, strings.NewReader(expected),
		"weedcoco_validation_violations_total"))
	assert.InDelta(t, 1, testutil.ToFloat64(m.validationsTotal.WithLabelValues("compatible-coco", StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.validationsTotal.WithLabelValues("weedcoco", StatusError)), 0)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *ConversionMetrics

	assert.NotPanics(t, func() {
		m.RecordRun(ImporterDeepWeeds, 1, 1, 1, time.Second)
		m.RecordRunError(ImporterDeepWeeds, time.Second)
		m.RecordWarning(ImporterDeepWeeds, WarningMissingImage)
		m.RecordValidation("weedcoco", 1)
	})
}

func TestDuplicateRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewConversionMetrics(registry)
	require.NoError(t, err)

	_, err = NewConversionMetrics(registry)
	assert.Error(t, err)
}
