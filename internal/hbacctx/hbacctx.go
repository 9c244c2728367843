// Package hbacctx holds per-activation state for one check-access call,
// replacing the source's thread-local debug flag and module-level logging
// function (spec.md §9 "Single-shot lifecycle, no globals"). Only the shim
// uses it: it logs through it and passes it as the context to the Dialer;
// the other components do not take it.
package hbacctx

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/l0p7/hbacd/internal/logging"
)

// Context threads the activation's deadline, logger, and debug flag through
// the decision pipeline. It is created once per check-access call and
// never shared across activations (spec.md §5's "each activation ... must
// use its own ... all downstream state").
type Context struct {
	context.Context
	Logger        *slog.Logger
	Debug         bool
	CorrelationID string
}

// New builds an activation Context whose deadline lies timeout from now;
// cancel must be invoked once the activation completes, on every exit path.
// The deadline reaches only callees that observe this Context: name-service
// lookups take no context, and directory.Dial ignores its context and relies
// on the configured timeout instead.
func New(parent context.Context, base *slog.Logger, debug bool, timeout time.Duration) (*Context, context.CancelFunc) {
	correlationID := uuid.NewString()
	ctx, cancel := context.WithTimeout(parent, timeout)
	return &Context{
		Context:       ctx,
		Logger:        logging.WithActivation(base, correlationID),
		Debug:         debug,
		CorrelationID: correlationID,
	}, cancel
}

// WithLogger returns a copy of ac with its logger replaced, for attaching
// an operation-scoped field.
func (ac *Context) WithLogger(logger *slog.Logger) *Context {
	clone := *ac
	clone.Logger = logger
	return &clone
}
