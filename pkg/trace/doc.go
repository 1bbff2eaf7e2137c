// Package trace implements the span data model and the span lifecycle
// manager for the wallet service's tracing core.
//
// A Span moves through UNSTARTED -> ACTIVE -> ENDED. The only transition
// not driven by the instrumented call site is the watchdog's force-close:
// a span left open beyond the configured span timeout ends with an error
// status and reason "timeout", exactly once. After ending, ownership of
// the span moves to the sampling decision engine and the span is
// immutable.
//
// # Feature-flag gate
//
// Every span start consults a per-component feature flag (persistence,
// messaging, state-machine, external-call, reactive-pipeline, use-case).
// The flags are packed into a single atomically-read word, so a disabled
// component costs one atomic load and returns a shared no-op sentinel on
// which End, SetAttribute, and AddEvent are safe, so call sites need no
// branching.
//
// # Attributes
//
// Attribute values pass through the identifier sanitizer before storage
// and are truncated to 1024 characters; a span holds at most 128
// attributes. Keys are lowercase dot-separated.
//
// # Usage
//
//	ctx, span := tracer.StartSpan(ctx, "usecase.transfer_funds", trace.KindServer, trace.ComponentUseCase)
//	span.SetAttribute("transaction.id", txID)
//	defer span.EndOK()
//
// or, wrapping a fallible operation:
//
//	err := trace.WithSpan(ctx, tracer, "repository.save_wallet", trace.KindInternal, trace.ComponentPersistence, func(ctx context.Context) error {
//	    return repo.Save(ctx, w)
//	})
package trace
