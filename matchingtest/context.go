package matchingtest

import (
	"context"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/tendermint/tendermint/libs/log"
)

// Ctx returns a context with a logger that writes to the test output only
// when the test is run in the verbose mode.
func Ctx() matching.Context {
	return matching.WithLogger(context.Background(), log.TestingLogger())
}

// CallerCtx returns a context as set by the host for a call made by given
// account.
func CallerCtx(caller matching.AccountID) matching.Context {
	return matching.WithCaller(Ctx(), caller)
}
