package donation

import (
	"strconv"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/orm"
	"github.com/tendermint/tendermint/libs/common"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r matching.Registry, host matching.Host) {
	dist := NewDistributor(host)
	r.Handle(&OfferMatchingFundsMsg{}, OfferMatchingFundsHandler{host: host, dist: dist})
	r.Handle(&RescindMatchingFundsMsg{}, RescindMatchingFundsHandler{host: host, dist: dist})
	r.Handle(&DonateMsg{}, DonateHandler{host: host, dist: dist})
	r.Handle(&SetMatcherAmountMsg{}, SetMatcherAmountHandler{dist: dist})
	r.Handle(&OnDonationConfirmedMsg{}, OnDonationConfirmedHandler{dist: dist})
}

// checkParties rejects calls that would move escrowed funds back into
// escrow.
func checkParties(host matching.Host, caller, recipient matching.AccountID) error {
	self := host.SelfIdentity()
	if caller.Equals(self) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s cannot call itself", caller)
	}
	if recipient.Equals(self) {
		return errors.Wrapf(errors.ErrInput, "recipient cannot be the contract account %s", self)
	}
	return nil
}

func transferData(h matching.TransferHandle) []byte {
	return orm.EncodeSequence(uint64(h))
}

func transferTag(h matching.TransferHandle) string {
	return strconv.FormatUint(uint64(h), 10)
}

// OfferMatchingFundsHandler commits the attached deposit.
type OfferMatchingFundsHandler struct {
	host matching.Host
	dist Distributor
}

var _ matching.Handler = OfferMatchingFundsHandler{}

// Deliver adds the attached deposit to the caller's commitment.
func (h OfferMatchingFundsHandler) Deliver(ctx matching.Context, db matching.KVStore, msg matching.Msg) (*matching.DeliverResult, error) {
	m, ok := msg.(*OfferMatchingFundsMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	matcher, err := h.host.Identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkParties(h.host, matcher, m.Recipient); err != nil {
		return nil, err
	}
	text, err := h.dist.Offer(ctx, db, matcher, m.Recipient, matching.GetAttachedDeposit(ctx))
	if err != nil {
		return nil, err
	}
	return &matching.DeliverResult{
		Log: text,
		Tags: []common.KVPair{
			matching.Tag("recipient", m.Recipient.String()),
			matching.Tag("matcher", matcher.String()),
		},
	}, nil
}

// RescindMatchingFundsHandler refunds a part of the caller's commitment.
type RescindMatchingFundsHandler struct {
	host matching.Host
	dist Distributor
}

var _ matching.Handler = RescindMatchingFundsHandler{}

// Deliver issues the refund. A missing commitment is reported in the
// result, not as an error.
func (h RescindMatchingFundsHandler) Deliver(ctx matching.Context, db matching.KVStore, msg matching.Msg) (*matching.DeliverResult, error) {
	m, ok := msg.(*RescindMatchingFundsMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if deposit := matching.GetAttachedDeposit(ctx); deposit.IsPositive() {
		return nil, errors.Wrap(errors.ErrInput, "rescinding does not accept a deposit")
	}
	matcher, err := h.host.Identity(ctx)
	if err != nil {
		return nil, err
	}
	requested, err := m.RequestedAmount()
	if err != nil {
		return nil, err
	}
	res, err := h.dist.Rescind(ctx, db, matcher, m.Recipient, requested)
	if err != nil {
		return nil, err
	}
	out := &matching.DeliverResult{
		Log: res.Text,
		Tags: []common.KVPair{
			matching.Tag("recipient", m.Recipient.String()),
			matching.Tag("matcher", matcher.String()),
		},
	}
	if res.Found {
		out.Data = transferData(res.Transfer)
		out.Tags = append(out.Tags, matching.Tag("transfer", transferTag(res.Transfer)))
	}
	return out, nil
}

// DonateHandler forwards the attached deposit to the recipient.
type DonateHandler struct {
	host matching.Host
	dist Distributor
}

var _ matching.Handler = DonateHandler{}

// Deliver issues the donation transfer. Matching donations follow its
// confirmation.
func (h DonateHandler) Deliver(ctx matching.Context, db matching.KVStore, msg matching.Msg) (*matching.DeliverResult, error) {
	m, ok := msg.(*DonateMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	donor, err := h.host.Identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkParties(h.host, donor, m.Recipient); err != nil {
		return nil, err
	}
	amount := matching.GetAttachedDeposit(ctx)
	handle, err := h.dist.Donate(ctx, db, donor, m.Recipient, amount)
	if err != nil {
		return nil, err
	}
	return &matching.DeliverResult{
		Data: transferData(handle),
		Log:  donor.String() + " is donating " + amount.String() + " to " + m.Recipient.String(),
		Tags: []common.KVPair{
			matching.Tag("recipient", m.Recipient.String()),
			matching.Tag("transfer", transferTag(handle)),
		},
	}, nil
}

// SetMatcherAmountHandler confirms a matching donation or a refund.
type SetMatcherAmountHandler struct {
	dist Distributor
}

var _ matching.Handler = SetMatcherAmountHandler{}

// Deliver finalizes the commitment change tied to the confirmed transfer.
func (h SetMatcherAmountHandler) Deliver(ctx matching.Context, db matching.KVStore, msg matching.Msg) (*matching.DeliverResult, error) {
	m, ok := msg.(*SetMatcherAmountMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	res, err := h.dist.ConfirmMatcherTransfer(ctx, db, m)
	if err != nil {
		return nil, err
	}
	return &matching.DeliverResult{
		Log: res.Text,
		Tags: []common.KVPair{
			matching.Tag("recipient", m.Recipient.String()),
			matching.Tag("matcher", m.Matcher.String()),
			matching.Tag("transfer", transferTag(matching.TransferHandle(m.TransferID))),
		},
	}, nil
}

// OnDonationConfirmedHandler distributes matching donations once a
// donation is confirmed.
type OnDonationConfirmedHandler struct {
	dist Distributor
}

var _ matching.Handler = OnDonationConfirmedHandler{}

// Deliver issues the matching donations.
func (h OnDonationConfirmedHandler) Deliver(ctx matching.Context, db matching.KVStore, msg matching.Msg) (*matching.DeliverResult, error) {
	m, ok := msg.(*OnDonationConfirmedMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	res, err := h.dist.ConfirmDonation(ctx, db, m)
	if err != nil {
		return nil, err
	}
	out := &matching.DeliverResult{
		Log: res.Text(),
		Tags: []common.KVPair{
			matching.Tag("recipient", m.Recipient.String()),
			matching.Tag("transfer", transferTag(matching.TransferHandle(m.TransferID))),
		},
	}
	for _, match := range res.Matches {
		out.Tags = append(out.Tags, matching.Tag("matcher", match.Matcher.String()))
	}
	return out, nil
}
