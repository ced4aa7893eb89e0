package donation

import (
	"testing"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/matchingtest"
	"github.com/ryancwalsh/donation-matching/matchingtest/assert"
	"github.com/ryancwalsh/donation-matching/store"
)

const escrow matching.AccountID = "escrow.near"

func issueRefund(t testing.TB, p Protocol, db matching.KVStore) matching.TransferHandle {
	t.Helper()
	pt := &PendingTransfer{
		Kind:        KindRefund,
		Recipient:   "r.near",
		Matcher:     "m.near",
		Destination: "m.near",
		Amount:      coin.NewAmount(5),
	}
	h, err := p.Issue(matchingtest.Ctx(), db, pt, func(h matching.TransferHandle) matching.Msg {
		return &SetMatcherAmountMsg{TransferID: uint64(h), Recipient: "r.near", Matcher: "m.near", Amount: coin.NewAmount(5)}
	})
	assert.Nil(t, err)
	assert.Equal(t, uint64(h), pt.ID)
	return h
}

func acceptAll(*PendingTransfer) error { return nil }

func TestProtocolIssue(t *testing.T) {
	host := &matchingtest.Host{Self: escrow}
	p := NewProtocol(host)
	db := store.MemStore()

	h := issueRefund(t, p, db)

	issued := host.Get(h)
	if issued == nil {
		t.Fatal("transfer was not issued")
	}
	assert.Equal(t, matching.AccountID("m.near"), issued.Destination)
	assert.Equal(t, DefaultCallbackGas, issued.CallbackGas)
	cb, ok := issued.Callback.(*SetMatcherAmountMsg)
	if !ok {
		t.Fatalf("unexpected callback %T", issued.Callback)
	}
	assert.Equal(t, uint64(h), cb.TransferID)

	pending, err := p.Pending(db, h)
	assert.Nil(t, err)
	assert.Equal(t, KindRefund, pending.Kind)

	zero := &PendingTransfer{Kind: KindRefund, Recipient: "r.near", Matcher: "m.near", Destination: "m.near", Amount: coin.NewAmount(0)}
	_, err = p.Issue(matchingtest.Ctx(), db, zero, func(matching.TransferHandle) matching.Msg { return &SetMatcherAmountMsg{} })
	assert.IsErr(t, errors.ErrAmount, err)
	assert.Equal(t, 1, len(host.Transfers))
}

func TestProtocolIssueUsesConfiguredGas(t *testing.T) {
	host := &matchingtest.Host{Self: escrow}
	p := NewProtocol(host)
	db := store.MemStore()

	opts := matching.Options{"conf": []byte(`{"donation": {"callback_gas": 42, "max_matchers": 3}}`)}
	assert.Nil(t, (Initializer{}).FromGenesis(opts, db))

	h := issueRefund(t, p, db)
	assert.Equal(t, int64(42), host.Get(h).CallbackGas)
}

func TestProtocolConfirm(t *testing.T) {
	cases := map[string]struct {
		Ctx      func(host *matchingtest.Host, h matching.TransferHandle) matching.Context
		Expected func(*PendingTransfer) error
		WantErr  *errors.Error
		WantOK   bool
		// WantPending is true if the pending record must survive.
		WantPending bool
	}{
		"successful transfer": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				return host.ConfirmCtx(h, true)
			},
			WantOK: true,
		},
		"failed transfer consumes the record": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				return host.ConfirmCtx(h, false)
			},
			WantOK: false,
		},
		"external caller": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				ctx := matchingtest.CallerCtx("mallory.near")
				return matching.WithTransferOutcomes(ctx, []matching.TransferOutcome{{Handle: h, Successful: true}})
			},
			WantErr:     errors.ErrUnauthorized,
			WantPending: true,
		},
		"no caller": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				return matchingtest.Ctx()
			},
			WantErr:     errors.ErrUnauthorized,
			WantPending: true,
		},
		"no outcome": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				return matchingtest.CallerCtx(escrow)
			},
			WantErr:     errors.ErrState,
			WantPending: true,
		},
		"two outcomes": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				ctx := matchingtest.CallerCtx(escrow)
				return matching.WithTransferOutcomes(ctx, []matching.TransferOutcome{
					{Handle: h, Successful: true},
					{Handle: h, Successful: true},
				})
			},
			WantErr:     errors.ErrState,
			WantPending: true,
		},
		"outcome of another transfer": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				return host.ConfirmCtx(h+1, true)
			},
			WantErr:     errors.ErrState,
			WantPending: true,
		},
		"arguments do not match": {
			Ctx: func(host *matchingtest.Host, h matching.TransferHandle) matching.Context {
				return host.ConfirmCtx(h, true)
			},
			Expected: func(*PendingTransfer) error {
				return errors.Wrap(errors.ErrInput, "mismatch")
			},
			WantErr:     errors.ErrState,
			WantPending: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			host := &matchingtest.Host{Self: escrow}
			p := NewProtocol(host)
			db := store.MemStore()
			h := issueRefund(t, p, db)

			expected := tc.Expected
			if expected == nil {
				expected = acceptAll
			}
			pt, ok, err := p.Confirm(tc.Ctx(host, h), db, h, expected)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if err == nil {
				assert.Equal(t, tc.WantOK, ok)
				assert.Equal(t, uint64(h), pt.ID)
			}

			_, err = p.Pending(db, h)
			if tc.WantPending {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, errors.ErrNotFound, err)
			}
		})
	}
}

func TestProtocolRejectsReplay(t *testing.T) {
	host := &matchingtest.Host{Self: escrow}
	p := NewProtocol(host)
	db := store.MemStore()
	h := issueRefund(t, p, db)

	_, ok, err := p.Confirm(host.ConfirmCtx(h, true), db, h, acceptAll)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	_, _, err = p.Confirm(host.ConfirmCtx(h, true), db, h, acceptAll)
	assert.IsErr(t, errors.ErrNotFound, err)
}
