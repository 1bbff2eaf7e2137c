package export

import (
	"testing"
	"time"

	"bloco-hq/tracehub/pkg/config"
)

func stubClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func testBreaker(t *testing.T) *breaker {
	t.Helper()
	return newBreaker(config.BreakerConfig{
		FailureThreshold: 3,
		ProbeInterval:    30 * time.Second,
	})
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stubClock(t, base)
	b := testBreaker(t)

	b.Failure()
	b.Failure()
	if got := b.State(); got != BreakerClosed {
		t.Fatalf("state after 2 failures = %v, want closed", got)
	}
	if !b.Allow() {
		t.Fatal("closed breaker rejected traffic")
	}

	b.Failure()
	if got := b.State(); got != BreakerOpen {
		t.Fatalf("state after 3 failures = %v, want open", got)
	}
	if b.Allow() {
		t.Fatal("open breaker admitted traffic before probe interval")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := testBreaker(t)

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()

	if got := b.State(); got != BreakerClosed {
		t.Errorf("state = %v, want closed after non-consecutive failures", got)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stubClock(t, base)
	b := testBreaker(t)

	for i := 0; i < 3; i++ {
		b.Failure()
	}

	// Probe interval not yet elapsed.
	stubClock(t, base.Add(29*time.Second))
	if b.Allow() {
		t.Fatal("breaker probed before the interval elapsed")
	}

	stubClock(t, base.Add(31*time.Second))
	if !b.Allow() {
		t.Fatal("breaker denied the probe after the interval elapsed")
	}
	if got := b.State(); got != BreakerHalfOpen {
		t.Fatalf("state during probe = %v, want half_open", got)
	}

	// Only one caller wins the probe.
	if b.Allow() {
		t.Fatal("second caller admitted during half-open probe")
	}

	b.Success()
	if got := b.State(); got != BreakerClosed {
		t.Errorf("state after successful probe = %v, want closed", got)
	}
	if !b.Allow() {
		t.Error("closed breaker rejected traffic after recovery")
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stubClock(t, base)
	b := testBreaker(t)

	for i := 0; i < 3; i++ {
		b.Failure()
	}

	stubClock(t, base.Add(31*time.Second))
	if !b.Allow() {
		t.Fatal("breaker denied the probe")
	}
	b.Failure()

	if got := b.State(); got != BreakerOpen {
		t.Fatalf("state after failed probe = %v, want open", got)
	}

	// The reopen restarts the probe interval from the failure.
	stubClock(t, base.Add(45*time.Second))
	if b.Allow() {
		t.Error("breaker probed again before a full interval after the failed probe")
	}
	stubClock(t, base.Add(62*time.Second))
	if !b.Allow() {
		t.Error("breaker denied the probe after a full interval")
	}
}
