/*
Package monitoring provides metrics collection for script runs.

# Overview

Metrics are Prometheus collectors registered on a registry owned by the
Metrics value, so independent interpreters (and tests) never collide on the
default registry.

# Usage

	metrics := monitoring.NewMetrics()
	interp := script.New(b, registry, script.WithMetrics(metrics))

	// after the run
	_ = metrics.WriteTextfile("twill.prom")
*/
package monitoring
