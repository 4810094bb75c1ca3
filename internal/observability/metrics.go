// Package observability provides run metrics for the weedcoco converters.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for one invocation.
type Metrics struct {
	registry   *prometheus.Registry
	Conversion *metrics.ConversionMetrics
}

// NewMetrics creates a registry and registers every collector on it.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	conversion, err := metrics.NewConversionMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversion metrics: %w", err)
	}

	return &Metrics{
		registry:   registry,
		Conversion: conversion,
	}, nil
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
// The Prometheus client writes a temporary file and renames it into place.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.FileError(fmt.Errorf("writing metrics textfile: %w", err), path)
	}
	return nil
}
