package health

import (
	"time"

	"bloco-hq/tracehub/pkg/export"
	"bloco-hq/tracehub/pkg/sampling"
)

// SamplerStats exposes the span buffer view the status endpoint reports.
// The sampling engine implements it.
type SamplerStats interface {
	Stats() sampling.Stats
}

// ExporterStatus exposes the backend view the status endpoint reports.
// The exporter implements it.
type ExporterStatus interface {
	Backends() []export.BackendStatus
	QueueDepth() (depth, capacity int)
}

// BackendHealth is the per-backend connectivity report.
type BackendHealth struct {
	// Status is "up", "degraded", or "down", derived from the breaker.
	Status string `json:"status"`

	Name                string `json:"name"`
	Breaker             string `json:"breaker"`
	ConsecutiveFailures int    `json:"consecutive_failures,omitempty"`
}

// BufferHealth is the span buffer report.
type BufferHealth struct {
	Spans     int     `json:"spans"`
	Traces    int     `json:"traces"`
	Capacity  int     `json:"capacity"`
	Occupancy float64 `json:"occupancy"`
}

// QueueHealth is the export queue report.
type QueueHealth struct {
	Depth    int `json:"depth"`
	Capacity int `json:"capacity"`
}

// Status is the full tracing status payload.
type Status struct {
	// Status is the overall verdict: "ok" when everything is up,
	// "degraded" when some backend is not, "down" when no backend is up.
	Status string `json:"status"`

	Backends  []BackendHealth `json:"backends"`
	Buffer    BufferHealth    `json:"buffer"`
	Queue     QueueHealth     `json:"queue"`
	Spans     SpanCounts      `json:"spans"`
	Timestamp time.Time       `json:"timestamp"`
}

// Checker assembles the tracing status from the sampling engine, the
// exporter, and the span tally.
type Checker struct {
	sampler  SamplerStats
	exporter ExporterStatus
	tally    *Tally
}

// NewChecker creates a status checker over the given components.
func NewChecker(sampler SamplerStats, exporter ExporterStatus, tally *Tally) *Checker {
	return &Checker{
		sampler:  sampler,
		exporter: exporter,
		tally:    tally,
	}
}

// Check assembles a point-in-time status report.
func (c *Checker) Check() Status {
	stats := c.sampler.Stats()
	depth, capacity := c.exporter.QueueDepth()

	backends := c.exporter.Backends()
	report := make([]BackendHealth, 0, len(backends))
	up := 0
	for _, b := range backends {
		report = append(report, BackendHealth{
			Status:              backendStatus(b.State),
			Name:                b.Name,
			Breaker:             b.State.String(),
			ConsecutiveFailures: b.ConsecutiveFailures,
		})
		if b.State == export.BreakerClosed {
			up++
		}
	}

	overall := "ok"
	switch {
	case len(backends) > 0 && up == 0:
		overall = "down"
	case up < len(backends):
		overall = "degraded"
	}

	return Status{
		Status:   overall,
		Backends: report,
		Buffer: BufferHealth{
			Spans:     stats.BufferedSpans,
			Traces:    stats.BufferedTraces,
			Capacity:  stats.Capacity,
			Occupancy: stats.Occupancy,
		},
		Queue:     QueueHealth{Depth: depth, Capacity: capacity},
		Spans:     c.tally.Counts(),
		Timestamp: time.Now().UTC(),
	}
}

// backendStatus maps a breaker position to a connectivity verdict. A
// half-open breaker means the backend is being probed, so it reports
// degraded rather than down.
func backendStatus(s export.BreakerState) string {
	switch s {
	case export.BreakerOpen:
		return "down"
	case export.BreakerHalfOpen:
		return "degraded"
	default:
		return "up"
	}
}
