// Package metrics exposes Prometheus metrics for the routing core.
//
// Registry implements routing.Recorder, so the dispatcher records route
// outcomes, hardware command results, feedback handling and switcher
// connectivity without knowing about Prometheus. The preset engine records
// recall outcomes through the same registry. Handler serves the
// registry in the text exposition format for GET /metrics.
package metrics
