package donation

import (
	"bytes"
	"strings"
	"testing"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/matchingtest"
	"github.com/ryancwalsh/donation-matching/store"
	"github.com/ryancwalsh/donation-matching/x/cash"
	"github.com/ryancwalsh/donation-matching/x/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	recipient matching.AccountID = "recipient.near"
	matcherA  matching.AccountID = "a.near"
	matcherB  matching.AccountID = "b.near"
	donor     matching.AccountID = "donor.near"
	mallory   matching.AccountID = "mallory.near"
)

// testRouter dispatches messages by path.
type testRouter map[string]matching.Handler

func (r testRouter) Handle(m matching.Msg, h matching.Handler) {
	r[m.Path()] = h
}

func (r testRouter) Deliver(ctx matching.Context, db matching.KVStore, msg matching.Msg) (*matching.DeliverResult, error) {
	h, ok := r[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMsg, "no handler for %s", msg.Path())
	}
	return h.Deliver(ctx, db, msg)
}

type testEnv struct {
	t      *testing.T
	db     matching.CacheableKVStore
	rt     *host.Runtime
	router testRouter
}

func newTestEnv(t *testing.T, opts ...host.Option) *testEnv {
	cdc := amino.NewCodec()
	matching.RegisterCodec(cdc)
	RegisterCodec(cdc)

	router := testRouter{}
	rt := host.NewRuntime(escrow, cash.NewController(), router, cdc, opts...)
	RegisterRoutes(router, rt)

	db := store.MemStore()
	bank := cash.NewController()
	for _, acct := range []matching.AccountID{matcherA, matcherB, donor, mallory} {
		require.NoError(t, bank.IssueCoins(db, acct, coin.NewAmount(1000)))
	}
	return &testEnv{t: t, db: db, rt: rt, router: router}
}

func (e *testEnv) call(caller matching.AccountID, deposit uint64, msg matching.Msg) (*matching.DeliverResult, error) {
	return e.rt.Call(matchingtest.Ctx(), e.db, caller, coin.NewAmount(deposit), msg)
}

func (e *testEnv) mustCall(caller matching.AccountID, deposit uint64, msg matching.Msg) *matching.DeliverResult {
	e.t.Helper()
	res, err := e.call(caller, deposit, msg)
	require.NoError(e.t, err)
	return res
}

func (e *testEnv) tick() []*host.Settlement {
	e.t.Helper()
	settlements, err := e.rt.Tick(matchingtest.Ctx(), e.db)
	require.NoError(e.t, err)
	for _, s := range settlements {
		require.NoError(e.t, s.CallbackErr)
	}
	return settlements
}

func (e *testEnv) balance(acct matching.AccountID) string {
	e.t.Helper()
	b, err := cash.NewController().Balance(e.db, acct)
	require.NoError(e.t, err)
	return b.String()
}

func (e *testEnv) commitment(r, m matching.AccountID) string {
	e.t.Helper()
	a, err := NewLedger().Get(e.db, r, m)
	require.NoError(e.t, err)
	return a.String()
}

func (e *testEnv) pending() int {
	e.t.Helper()
	p, err := e.rt.Pending(e.db)
	require.NoError(e.t, err)
	return len(p)
}

func TestOfferAndTwoDonations(t *testing.T) {
	env := newTestEnv(t)

	res := env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	assert.Equal(t, "a.near is now committed to match donations to recipient.near up to a maximum of 100", res.Log)
	assert.Equal(t, "100", env.commitment(recipient, matcherA))
	assert.Equal(t, "100", env.balance(escrow))
	assert.Equal(t, "900", env.balance(matcherA))

	res = env.mustCall(matcherA, 20, &OfferMatchingFundsMsg{Recipient: recipient})
	assert.Equal(t, "a.near is now committed to match donations to recipient.near up to a maximum of 120", res.Log)
	_, err := env.call(matcherA, 20, &RescindMatchingFundsMsg{Recipient: recipient, Amount: "20"})
	require.True(t, errors.ErrInput.Is(err))
	env.mustCall(matcherA, 0, &RescindMatchingFundsMsg{Recipient: recipient, Amount: "20"})
	env.tick()
	assert.Equal(t, "100", env.commitment(recipient, matcherA))

	env.mustCall(donor, 30, &DonateMsg{Recipient: recipient})
	// Nothing is distributed before the donation is confirmed.
	assert.Equal(t, "100", env.commitment(recipient, matcherA))
	assert.Equal(t, "0", env.balance(recipient))

	settlements := env.tick()
	require.Len(t, settlements, 2)
	assert.Equal(t, "donor.near donated 30 to recipient.near a.near sent a matching donation of 30 to recipient.near",
		settlements[0].CallbackResult.Log)
	assert.Equal(t, "60", env.balance(recipient))
	assert.Equal(t, "70", env.commitment(recipient, matcherA))
	assert.Equal(t, "70", env.balance(escrow))

	env.mustCall(donor, 50, &DonateMsg{Recipient: recipient})
	env.tick()
	assert.Equal(t, "160", env.balance(recipient))
	assert.Equal(t, "20", env.commitment(recipient, matcherA))
	assert.Equal(t, "20", env.balance(escrow))
	assert.Equal(t, "920", env.balance(donor))
	assert.Equal(t, 0, env.pending())
}

func TestMultipleMatchers(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(matcherB, 10, &OfferMatchingFundsMsg{Recipient: recipient})

	env.mustCall(donor, 40, &DonateMsg{Recipient: recipient})
	settlements := env.tick()
	require.Len(t, settlements, 3)
	assert.Equal(t, "donor.near donated 40 to recipient.near a.near sent a matching donation of 40 to recipient.near b.near sent a matching donation of 10 to recipient.near",
		settlements[0].CallbackResult.Log)

	assert.Equal(t, "90", env.balance(recipient))
	assert.Equal(t, "60", env.commitment(recipient, matcherA))
	// A matcher reaching zero is removed from the ledger.
	assert.Equal(t, "0", env.commitment(recipient, matcherB))
	matchers, err := NewLedger().ListMatchers(env.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, []matching.AccountID{matcherA}, matchers)
}

func TestDonationWithoutMatchers(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(donor, 25, &DonateMsg{Recipient: recipient})
	settlements := env.tick()
	require.Len(t, settlements, 1)
	assert.Equal(t, "donor.near donated 25 to recipient.near", settlements[0].CallbackResult.Log)
	assert.Equal(t, "25", env.balance(recipient))
}

func TestRescind(t *testing.T) {
	cases := map[string]struct {
		Offer         uint64
		Rescind       string
		WantLog       string
		WantRefund    string
		WantRemaining string
	}{
		"rescind more than committed": {
			Offer:         10,
			Rescind:       "25",
			WantLog:       "a.near is not matching donations to recipient.near anymore",
			WantRefund:    "10",
			WantRemaining: "0",
		},
		"rescind everything": {
			Offer:         10,
			Rescind:       "10",
			WantLog:       "a.near is not matching donations to recipient.near anymore",
			WantRefund:    "10",
			WantRemaining: "0",
		},
		"rescind a part": {
			Offer:         100,
			Rescind:       "40",
			WantLog:       "a.near rescinded 40 and so is now only committed to match donations to recipient.near up to a maximum of 60",
			WantRefund:    "40",
			WantRemaining: "60",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t)
			env.mustCall(matcherA, tc.Offer, &OfferMatchingFundsMsg{Recipient: recipient})
			before := env.balance(matcherA)

			res := env.mustCall(matcherA, 0, &RescindMatchingFundsMsg{Recipient: recipient, Amount: tc.Rescind})
			assert.Equal(t, tc.WantLog, res.Log)
			assert.NotEmpty(t, res.Data)

			// The commitment stands until the refund is confirmed.
			assert.Equal(t, before, env.balance(matcherA))
			c, err := NewLedger().Commitment(env.db, recipient, matcherA)
			require.NoError(t, err)
			assert.Equal(t, tc.WantRefund, c.Reserved.String())

			settlements := env.tick()
			require.Len(t, settlements, 1)
			assert.Equal(t, tc.WantLog, settlements[0].CallbackResult.Log)
			assert.Equal(t, tc.WantRemaining, env.commitment(recipient, matcherA))

			refunded, err := coin.MustParseAmount(env.balance(matcherA)).Subtract(coin.MustParseAmount(before))
			require.NoError(t, err)
			assert.Equal(t, tc.WantRefund, refunded.String())
		})
	}
}

func TestRescindWithoutCommitment(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.call(matcherA, 0, &RescindMatchingFundsMsg{Recipient: recipient, Amount: "5"})
	require.NoError(t, err)
	assert.Equal(t, "a.near is not matching donations to recipient.near", res.Log)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, env.pending())
}

func TestInvalidArguments(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})

	cases := map[string]struct {
		Caller  matching.AccountID
		Deposit uint64
		Msg     matching.Msg
		WantErr *errors.Error
	}{
		"offer without deposit": {
			Caller: matcherA, Msg: &OfferMatchingFundsMsg{Recipient: recipient},
			WantErr: errors.ErrAmount,
		},
		"offer to nobody": {
			Caller: matcherA, Deposit: 5, Msg: &OfferMatchingFundsMsg{},
			WantErr: errors.ErrEmpty,
		},
		"donate without deposit": {
			Caller: donor, Msg: &DonateMsg{Recipient: recipient},
			WantErr: errors.ErrAmount,
		},
		"rescind zero": {
			Caller: matcherA, Msg: &RescindMatchingFundsMsg{Recipient: recipient, Amount: "0"},
			WantErr: errors.ErrAmount,
		},
		"rescind negative": {
			Caller: matcherA, Msg: &RescindMatchingFundsMsg{Recipient: recipient, Amount: "-5"},
			WantErr: errors.ErrAmount,
		},
		"rescind garbage": {
			Caller: matcherA, Msg: &RescindMatchingFundsMsg{Recipient: recipient, Amount: "five"},
			WantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := env.call(tc.Caller, tc.Deposit, tc.Msg)
			require.True(t, tc.WantErr.Is(err), "unexpected error: %+v", err)
			assert.Equal(t, "100", env.commitment(recipient, matcherA))
			assert.Equal(t, "100", env.balance(escrow))
			assert.Equal(t, 0, env.pending())
		})
	}
}

func TestFailedDonationTransfer(t *testing.T) {
	rejectRecipient := func(t *host.Transfer) error {
		if t.Destination == recipient {
			return errors.Wrap(errors.ErrUnauthorized, "recipient account is closed")
		}
		return nil
	}
	env := newTestEnv(t, host.WithTransferPolicy(rejectRecipient))
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(donor, 30, &DonateMsg{Recipient: recipient})

	settlements := env.tick()
	require.Len(t, settlements, 1)
	assert.False(t, settlements[0].Record.Successful)
	assert.True(t, settlements[0].Record.CallbackExecuted)

	// No matching donation was issued and the commitment is untouched.
	assert.Equal(t, 0, env.pending())
	assert.Equal(t, "100", env.commitment(recipient, matcherA))
	assert.Equal(t, "0", env.balance(recipient))
	assert.Equal(t, "130", env.balance(escrow))
}

func TestFailedMatchingTransfer(t *testing.T) {
	// The matching donation is the second transfer issued.
	rejectMatch := func(t *host.Transfer) error {
		if t.ID == 2 {
			return errors.Wrap(errors.ErrState, "rejected")
		}
		return nil
	}
	env := newTestEnv(t, host.WithTransferPolicy(rejectMatch))
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(donor, 30, &DonateMsg{Recipient: recipient})

	settlements := env.tick()
	require.Len(t, settlements, 2)
	assert.True(t, settlements[0].Record.Successful)
	assert.False(t, settlements[1].Record.Successful)

	// The recipient got the donation only. The commitment is whole and
	// fully available again.
	assert.Equal(t, "30", env.balance(recipient))
	c, err := NewLedger().Commitment(env.db, recipient, matcherA)
	require.NoError(t, err)
	assert.Equal(t, "100", c.Amount.String())
	assert.Equal(t, "100", c.Available().String())
}

func TestConfirmationRequiresContract(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(donor, 30, &DonateMsg{Recipient: recipient})

	_, err := env.call(mallory, 0, &OnDonationConfirmedMsg{TransferID: 1, Donor: donor, Recipient: recipient, Amount: coin.NewAmount(30)})
	require.True(t, errors.ErrUnauthorized.Is(err))

	_, err = env.call(mallory, 0, &SetMatcherAmountMsg{TransferID: 1, Recipient: recipient, Matcher: matcherA, Amount: coin.NewAmount(100)})
	require.True(t, errors.ErrUnauthorized.Is(err))

	assert.Equal(t, "100", env.commitment(recipient, matcherA))
	assert.Equal(t, 1, env.pending())

	// The genuine confirmation still works.
	env.tick()
	assert.Equal(t, "70", env.commitment(recipient, matcherA))
}

func TestContractAccountCannotOfferOrReceive(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})

	// Escrowed funds of other matchers cannot back a commitment.
	_, err := env.call(escrow, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	require.True(t, errors.ErrUnauthorized.Is(err))
	ctx := matching.WithAttachedDeposit(matchingtest.CallerCtx(escrow), coin.NewAmount(100))
	_, err = env.router.Deliver(ctx, env.db, &OfferMatchingFundsMsg{Recipient: recipient})
	require.True(t, errors.ErrUnauthorized.Is(err))
	_, err = env.router.Deliver(ctx, env.db, &DonateMsg{Recipient: recipient})
	require.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, "0", env.commitment(recipient, escrow))

	// Matching transfers to the contract itself would never leave escrow.
	_, err = env.call(donor, 50, &DonateMsg{Recipient: escrow})
	require.True(t, errors.ErrInput.Is(err))
	_, err = env.call(matcherB, 50, &OfferMatchingFundsMsg{Recipient: escrow})
	require.True(t, errors.ErrInput.Is(err))
	assert.Equal(t, "1000", env.balance(donor))
	assert.Equal(t, "1000", env.balance(matcherB))
	assert.Equal(t, 0, env.pending())

	env.mustCall(donor, 100, &DonateMsg{Recipient: recipient})
	env.tick()
	assert.Equal(t, "200", env.balance(recipient))
	assert.Equal(t, "0", env.balance(escrow))
	assert.Equal(t, "0", env.commitment(recipient, matcherA))
	assert.Equal(t, "0", env.commitment(recipient, escrow))
}

func TestMatchTransferLogNamesBothTransfers(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(donor, 30, &DonateMsg{Recipient: recipient})

	var buf bytes.Buffer
	ctx := matching.WithLogger(matchingtest.Ctx(), log.NewTMLogger(&buf))
	_, err := env.rt.Step(ctx, env.db)
	require.NoError(t, err)

	var issued []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "transfer issued") {
			issued = append(issued, line)
		}
	}
	require.Len(t, issued, 1)
	assert.Contains(t, issued[0], "callback_transfer=1")
	assert.Contains(t, issued[0], " transfer=2")
	assert.Equal(t, 1, strings.Count(issued[0], " transfer="))
}

func TestReplayedConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(donor, 30, &DonateMsg{Recipient: recipient})
	env.tick()
	assert.Equal(t, "70", env.commitment(recipient, matcherA))

	outcome := matching.TransferOutcome{Handle: 2, Successful: true}
	ctx := matching.WithTransferOutcomes(matchingtest.CallerCtx(escrow), []matching.TransferOutcome{outcome})
	replay := &SetMatcherAmountMsg{TransferID: 2, Recipient: recipient, Matcher: matcherA, Amount: coin.NewAmount(30)}
	_, err := env.router.Deliver(ctx, env.db, replay)
	require.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, "70", env.commitment(recipient, matcherA))

	outcome = matching.TransferOutcome{Handle: 1, Successful: true}
	ctx = matching.WithTransferOutcomes(matchingtest.CallerCtx(escrow), []matching.TransferOutcome{outcome})
	donation := &OnDonationConfirmedMsg{TransferID: 1, Donor: donor, Recipient: recipient, Amount: coin.NewAmount(30)}
	_, err = env.router.Deliver(ctx, env.db, donation)
	require.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, 0, env.pending())
}

func TestInterleavedDonations(t *testing.T) {
	env := newTestEnv(t)
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})

	// Both donations are confirmed before any matching donation is.
	env.mustCall(donor, 80, &DonateMsg{Recipient: recipient})
	env.mustCall(mallory, 80, &DonateMsg{Recipient: recipient})
	_, err := env.rt.Settle(matchingtest.Ctx(), env.db, 1)
	require.NoError(t, err)
	_, err = env.rt.Settle(matchingtest.Ctx(), env.db, 2)
	require.NoError(t, err)

	// The second donation can only be matched with what the first one did
	// not already hold.
	c, err := NewLedger().Commitment(env.db, recipient, matcherA)
	require.NoError(t, err)
	assert.Equal(t, "100", c.Reserved.String())

	// A rescind has nothing left to take.
	_, err = env.call(matcherA, 0, &RescindMatchingFundsMsg{Recipient: recipient, Amount: "1"})
	require.True(t, errors.ErrState.Is(err))

	// Matching donations are confirmed in reverse order.
	pending, err := env.rt.Pending(env.db)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "80", pending[0].Amount.String())
	assert.Equal(t, "20", pending[1].Amount.String())
	_, err = env.rt.Settle(matchingtest.Ctx(), env.db, pending[1].Handle())
	require.NoError(t, err)
	assert.Equal(t, "80", env.commitment(recipient, matcherA))
	_, err = env.rt.Settle(matchingtest.Ctx(), env.db, pending[0].Handle())
	require.NoError(t, err)

	assert.Equal(t, "0", env.commitment(recipient, matcherA))
	assert.Equal(t, "260", env.balance(recipient))
	assert.Equal(t, "0", env.balance(escrow))
}

func TestMaxMatchers(t *testing.T) {
	env := newTestEnv(t)
	opts := matching.Options{"conf": []byte(`{"donation": {"callback_gas": 20000000000000, "max_matchers": 1}}`)}
	require.NoError(t, (Initializer{}).FromGenesis(opts, env.db))

	env.mustCall(matcherA, 10, &OfferMatchingFundsMsg{Recipient: recipient})
	_, err := env.call(matcherB, 10, &OfferMatchingFundsMsg{Recipient: recipient})
	require.True(t, errors.ErrLimit.Is(err))
	assert.Equal(t, "1000", env.balance(matcherB))
}

func TestGetCommitments(t *testing.T) {
	env := newTestEnv(t)

	report, err := GetCommitments(env.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, "nobody is matching donations to recipient.near", report.Text)
	assert.Empty(t, report.Entries)

	env.mustCall(matcherB, 10, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(matcherA, 100, &OfferMatchingFundsMsg{Recipient: recipient})
	env.mustCall(matcherA, 0, &RescindMatchingFundsMsg{Recipient: recipient, Amount: "40"})

	report, err = GetCommitments(env.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, "a.near is committed to match donations to recipient.near up to a maximum of 100 "+
		"b.near is committed to match donations to recipient.near up to a maximum of 10", report.Text)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, matcherA, report.Entries[0].Matcher)
	assert.Equal(t, "60", report.Entries[0].Available.String())
	assert.Equal(t, matcherB, report.Entries[1].Matcher)
}
