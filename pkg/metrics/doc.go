// Package metrics is the core of an embedded application-metrics pipeline:
// counters, timers, gauges, markers and levels flow from InputScope handles
// through composable wrappers (prefixing, labeling, buffering, sampling,
// caching, async dispatch, fan-out) into an OutputScope.
//
// The package has no transport or encoding dependencies of its own — see
// pkg/metrics/output and pkg/metrics/transport for concrete sinks. Concrete
// encoders and transports only need to satisfy the InputScope/OutputScope/
// LineWriter contracts declared here.
package metrics
