// Package metrics exposes the Prometheus instruments of the recommender.
//
// Instruments are registered on the default registry at package init and
// served by the HTTP server at /metrics.
package metrics
