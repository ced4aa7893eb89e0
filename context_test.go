package matching

import (
	"context"
	"os"
	"testing"

	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	// try logger with default
	newLogger := log.NewTMLogger(os.Stdout)
	ctx := WithLogger(bg, newLogger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, newLogger, GetLogger(ctx))

	// caller is only present when set
	_, ok := GetCaller(ctx)
	assert.False(t, ok)
	ctx = WithCaller(ctx, "alice.near")
	caller, ok := GetCaller(ctx)
	assert.True(t, ok)
	assert.Equal(t, AccountID("alice.near"), caller)

	// no deposit means a zero deposit
	assert.True(t, GetAttachedDeposit(ctx).IsZero())
	ctx = WithAttachedDeposit(ctx, coin.NewAmount(7))
	assert.Equal(t, "7", GetAttachedDeposit(ctx).String())

	assert.Empty(t, GetTransferOutcomes(ctx))
	outcomes := []TransferOutcome{{Handle: 3, Successful: true}}
	ctx = WithTransferOutcomes(ctx, outcomes)
	assert.Equal(t, outcomes, GetTransferOutcomes(ctx))
}

func TestAccountID(t *testing.T) {
	cases := map[string]struct {
		acct  AccountID
		valid bool
	}{
		"simple":    {acct: "alice.near", valid: true},
		"empty":     {acct: "", valid: false},
		"too long":  {acct: AccountID(make([]byte, 257)), valid: false},
		"just fits": {acct: AccountID(make([]byte, 256)), valid: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.acct.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
	assert.True(t, AccountID("a").Equals("a"))
	assert.False(t, AccountID("a").Equals("b"))
}
