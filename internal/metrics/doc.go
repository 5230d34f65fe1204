// Package metrics provides build and preview metrics for pagesmith.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks:
//
//	b := site.NewBuilder(cfg, site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The preview server exposes the Prometheus registry on /metrics when
// serve.metrics is enabled.
package metrics
