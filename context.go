package matching

import (
	"context"

	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/tendermint/tendermint/libs/log"
)

// Context is just an alias for the standard implementation.
// We use functions to extend it to our domain.
type Context = context.Context

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeyCaller
	contextKeyDeposit
	contextKeyOutcomes
)

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithCaller sets the identity of the account invoking the current call.
// The host sets it once per call. Callbacks scheduled by the host are
// executed with the contract account as the caller.
func WithCaller(ctx Context, caller AccountID) Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// GetCaller returns the identity of the account invoking the current call.
func GetCaller(ctx Context) (AccountID, bool) {
	val, ok := ctx.Value(contextKeyCaller).(AccountID)
	return val, ok
}

// WithAttachedDeposit sets the amount that the caller attached to the
// current call. The host moves it into the contract account before the
// call is handled.
func WithAttachedDeposit(ctx Context, amount coin.Amount) Context {
	return context.WithValue(ctx, contextKeyDeposit, amount)
}

// GetAttachedDeposit returns the amount attached to the current call. Zero
// is returned if nothing was attached.
func GetAttachedDeposit(ctx Context) coin.Amount {
	val, _ := ctx.Value(contextKeyDeposit).(coin.Amount)
	return val
}

// WithTransferOutcomes sets the outcomes of the transfers that the current
// callback is waiting for.
func WithTransferOutcomes(ctx Context, outcomes []TransferOutcome) Context {
	return context.WithValue(ctx, contextKeyOutcomes, outcomes)
}

// GetTransferOutcomes returns the transfer outcomes delivered with the
// current callback. nil is returned for a regular call.
func GetTransferOutcomes(ctx Context) []TransferOutcome {
	val, _ := ctx.Value(contextKeyOutcomes).([]TransferOutcome)
	return val
}
