// Package metrics holds shared metric configuration used across the
// application's instruments.
package metrics

// DefaultBuckets is a common set of histogram bucket boundaries in seconds,
// reused by latency instruments so dashboards stay comparable.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals
