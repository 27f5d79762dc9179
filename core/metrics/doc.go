package metrics

// Package metrics defines interfaces and implementations for collecting
// solver metrics. Sinks like PromSink and InfluxSink record events such as
// solve outcomes, per-year dispatch summaries or constraint utilization and
// can be combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured. Helper functions collect
// events from the internal event bus.
