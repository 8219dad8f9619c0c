// Package pipeline composes the enforcement stages — spec-match,
// jwt-verify, scope-check, request-validate, the downstream handler and
// response-validate — into a single left-to-right chain over a shared
// per-request Exchange and audit Context.
//
// A Stage decides whether to continue the chain by calling next, or to
// stop it by returning without calling next (having already written a
// response). There is no separate sentinel for "handled" — the act of
// not calling next is itself the signal.
package pipeline

import "context"

// Stage is one link in the chain. Calling next continues to the
// remaining stages; returning without calling next finalises the
// exchange (the stage has already written a response). A non-nil error
// aborts the chain and is reported to Run's caller after any error
// response the stage itself wrote.
type Stage func(ctx context.Context, ex *Exchange, next Stage) error

// terminal is invoked once every registered stage has run and forwarded.
// It does nothing: the last real stage in a chain is expected to be a
// downstream-handler stage that writes the response itself.
func terminal(ctx context.Context, ex *Exchange, next Stage) error {
	return nil
}

// New composes stages into a single Stage. The returned Stage, when
// invoked, runs stages[0], whose own "next" argument runs stages[1], and
// so on; the final stage's "next" runs the continuation that stage passes
// to it, or terminal when it passes nil. With at least one stage, the
// "next" argument given to the returned Stage itself is not used.
func New(stages ...Stage) Stage {
	return chainFrom(stages, 0)
}

func chainFrom(stages []Stage, i int) Stage {
	if i >= len(stages) {
		return func(ctx context.Context, ex *Exchange, next Stage) error {
			if next != nil {
				return next(ctx, ex, terminal)
			}
			return terminal(ctx, ex, nil)
		}
	}
	rest := chainFrom(stages, i+1)
	return func(ctx context.Context, ex *Exchange, next Stage) error {
		return stages[i](ctx, ex, rest)
	}
}

// Run executes chain end to end over ex.
func Run(ctx context.Context, chain Stage, ex *Exchange) error {
	return chain(ctx, ex, terminal)
}
