package export

import (
	"sync/atomic"
	"time"

	"bloco-hq/tracehub/pkg/config"
)

// BreakerState is the circuit breaker state machine position.
type BreakerState int32

const (
	// BreakerClosed passes traffic through normally.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects traffic until the probe interval elapses.
	BreakerOpen

	// BreakerHalfOpen lets exactly one probe through to test recovery.
	BreakerHalfOpen
)

// String returns the lower-case state name used in logs and metrics.
func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// now is stubbed in tests.
var now = time.Now

// breaker is a per-backend circuit breaker. All transitions are atomic
// compare-and-swap operations so the export hot path never takes a lock:
//
//	closed -> open       consecutive failures reach the threshold
//	open -> half-open    probe interval elapsed, one caller wins the probe
//	half-open -> closed  probe succeeded
//	half-open -> open    probe failed
type breaker struct {
	threshold int
	probe     time.Duration

	state    atomic.Int32
	failures atomic.Int32
	openedAt atomic.Int64
}

func newBreaker(cfg config.BreakerConfig) *breaker {
	return &breaker{
		threshold: cfg.FailureThreshold,
		probe:     cfg.ProbeInterval,
	}
}

// Allow reports whether a request may go to the backend. In the open
// state it returns false until the probe interval has elapsed, then
// admits a single probe by moving to half-open; concurrent callers race
// on the CAS and only the winner probes.
func (b *breaker) Allow() bool {
	switch BreakerState(b.state.Load()) {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		return false
	default:
		opened := time.Unix(0, b.openedAt.Load())
		if now().Sub(opened) < b.probe {
			return false
		}
		return b.state.CompareAndSwap(int32(BreakerOpen), int32(BreakerHalfOpen))
	}
}

// Success records a successful call, closing the breaker from half-open
// and resetting the failure count.
func (b *breaker) Success() {
	b.failures.Store(0)
	b.state.CompareAndSwap(int32(BreakerHalfOpen), int32(BreakerClosed))
}

// Failure records a failed call. The half-open probe failing reopens the
// breaker immediately; in the closed state the breaker opens once
// consecutive failures reach the threshold.
func (b *breaker) Failure() {
	if b.state.CompareAndSwap(int32(BreakerHalfOpen), int32(BreakerOpen)) {
		b.openedAt.Store(now().UnixNano())
		return
	}
	if int(b.failures.Add(1)) >= b.threshold {
		if b.state.CompareAndSwap(int32(BreakerClosed), int32(BreakerOpen)) {
			b.openedAt.Store(now().UnixNano())
		}
	}
}

// State returns the current state.
func (b *breaker) State() BreakerState {
	return BreakerState(b.state.Load())
}

// Failures returns the consecutive failure count.
func (b *breaker) Failures() int {
	return int(b.failures.Load())
}
