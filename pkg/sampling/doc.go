// Package sampling decides which traces are worth exporting.
//
// The engine is tail-based: completed spans are buffered per trace for a
// short evaluation window, then the whole trace gets one verdict. Traces
// with an error span, traces slower than the configured threshold, and
// traces carrying a critical business event are always kept; everything
// else falls back to a deterministic probabilistic decision derived from
// the trace id, so repeated evaluations of the same trace always agree.
//
// Keeping every error and slow trace while sampling routine traffic at a
// low rate buys far better signal than head sampling alone, at the cost
// of a bounded span buffer. Under overload the oldest buffered traces are
// evicted and dropped.
package sampling
