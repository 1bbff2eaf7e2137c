package propagation

import (
	"context"

	"bloco-hq/tracehub/pkg/trace"
)

// Snapshot is an immutable capture of trace identity, small enough to
// copy by value at every scheduler or worker hand-off. It carries no
// reference to the live span, so holding one never pins span memory.
type Snapshot struct {
	sc    trace.SpanContext
	valid bool
}

// Capture snapshots the trace identity active in ctx. Capturing a
// context with no active trace yields an empty snapshot whose Restore is
// a no-op.
func Capture(ctx context.Context) Snapshot {
	sc := trace.SpanContextFromContext(ctx)
	return Snapshot{sc: sc, valid: sc.IsValid()}
}

// Restore re-activates the captured identity in ctx, making it the
// parent for spans started in the receiving execution unit. Every
// goroutine spawn or channel hand-off that may start spans passes
// through a Capture/Restore pair so no span is created with an
// unresolved parent.
func (s Snapshot) Restore(ctx context.Context) context.Context {
	if !s.valid {
		return ctx
	}
	return trace.ContextWithRemote(ctx, s.sc)
}

// Active reports whether the snapshot carries a usable trace identity.
func (s Snapshot) Active() bool { return s.valid }

// SpanContext returns the captured identity.
func (s Snapshot) SpanContext() trace.SpanContext { return s.sc }

// Go runs fn on a new goroutine with the caller's trace identity
// restored into the context fn receives.
func Go(ctx context.Context, fn func(ctx context.Context)) {
	snap := Capture(ctx)
	go func() {
		fn(snap.Restore(context.Background()))
	}()
}
