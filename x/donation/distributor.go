package donation

import (
	"fmt"
	"strings"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
)

// Distributor implements the ledger operations that matchers and donors
// trigger.
type Distributor struct {
	ledger   Ledger
	protocol Protocol
}

// NewDistributor returns a distributor issuing transfers through given
// host.
func NewDistributor(host matching.Host) Distributor {
	return Distributor{
		ledger:   NewLedger(),
		protocol: NewProtocol(host),
	}
}

// Offer commits amount, already deposited into escrow by the matcher, to
// match donations to recipient.
func (d Distributor) Offer(ctx matching.Context, db matching.KVStore, matcher, recipient matching.AccountID, amount coin.Amount) (string, error) {
	if !amount.IsPositive() {
		return "", errors.Wrap(errors.ErrAmount, "attach a deposit to offer matching funds")
	}
	conf, err := loadConf(db)
	if err != nil {
		return "", err
	}
	total, err := d.ledger.Add(db, recipient, matcher, amount, conf.MaxMatchers)
	if err != nil {
		return "", err
	}
	text := fmt.Sprintf("%s is now committed to match donations to %s up to a maximum of %s", matcher, recipient, total)
	matching.GetLogger(ctx).Info(text)
	return text, nil
}

// RescindResult describes a rescind request.
type RescindResult struct {
	// Found is false if the matcher has no commitment to the recipient.
	Found bool
	// Transfer is the refund transfer.
	Transfer matching.TransferHandle
	Refund   coin.Amount
	// Remaining is the commitment once the refund is confirmed.
	Remaining coin.Amount
	Text      string
}

// Rescind issues a refund of up to requested of the matcher's commitment.
// The commitment is decreased only when the refund is confirmed. Funds
// held for unconfirmed transfers cannot be rescinded.
func (d Distributor) Rescind(ctx matching.Context, db matching.KVStore, matcher, recipient matching.AccountID, requested coin.Amount) (*RescindResult, error) {
	if !requested.IsPositive() {
		return nil, errors.Wrap(errors.ErrAmount, "amount to rescind must be greater than zero")
	}
	log := matching.GetLogger(ctx)

	c, err := d.ledger.Commitment(db, recipient, matcher)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		text := fmt.Sprintf("%s is not matching donations to %s", matcher, recipient)
		log.Info(text)
		return &RescindResult{Found: false, Text: text}, nil
	default:
		return nil, err
	}

	refund := coin.Min(requested, c.Available())
	if refund.IsZero() {
		return nil, errors.Wrapf(errors.ErrState, "all %s committed by %s to %s is held by unconfirmed transfers", c.Amount, matcher, recipient)
	}
	if err := d.ledger.Reserve(db, recipient, matcher, refund); err != nil {
		return nil, err
	}

	t := &PendingTransfer{
		Kind:        KindRefund,
		Recipient:   recipient,
		Matcher:     matcher,
		Destination: matcher,
		Amount:      refund,
	}
	handle, err := d.protocol.Issue(ctx, db, t, func(h matching.TransferHandle) matching.Msg {
		return &SetMatcherAmountMsg{
			TransferID: uint64(h),
			Recipient:  recipient,
			Matcher:    matcher,
			Amount:     refund,
		}
	})
	if err != nil {
		return nil, err
	}

	remaining := c.Amount.SaturatingSubtract(refund)
	text := rescindText(matcher, recipient, refund, remaining)
	log.Info(text, "transfer", handle)
	return &RescindResult{
		Found:     true,
		Transfer:  handle,
		Refund:    refund,
		Remaining: remaining,
		Text:      text,
	}, nil
}

func rescindText(matcher, recipient matching.AccountID, refund, remaining coin.Amount) string {
	if remaining.IsZero() {
		return fmt.Sprintf("%s is not matching donations to %s anymore", matcher, recipient)
	}
	return fmt.Sprintf("%s rescinded %s and so is now only committed to match donations to %s up to a maximum of %s", matcher, refund, recipient, remaining)
}

// Donate forwards amount, already deposited into escrow by the donor, to
// recipient. Matching donations are issued once this transfer is
// confirmed.
func (d Distributor) Donate(ctx matching.Context, db matching.KVStore, donor, recipient matching.AccountID, amount coin.Amount) (matching.TransferHandle, error) {
	if !amount.IsPositive() {
		return 0, errors.Wrap(errors.ErrAmount, "attach a deposit to donate")
	}
	t := &PendingTransfer{
		Kind:        KindDonation,
		Recipient:   recipient,
		Donor:       donor,
		Destination: recipient,
		Amount:      amount,
	}
	handle, err := d.protocol.Issue(ctx, db, t, func(h matching.TransferHandle) matching.Msg {
		return &OnDonationConfirmedMsg{
			TransferID: uint64(h),
			Donor:      donor,
			Recipient:  recipient,
			Amount:     amount,
		}
	})
	if err != nil {
		return 0, err
	}
	matching.GetLogger(ctx).Debug("donation issued", "transfer", handle, "donor", donor, "recipient", recipient, "amount", amount)
	return handle, nil
}

// MatchTransfer is a matching donation issued for a confirmed donation.
type MatchTransfer struct {
	Matcher  matching.AccountID
	Amount   coin.Amount
	Transfer matching.TransferHandle
}

// DistributionResult describes the outcome of a donation confirmation.
type DistributionResult struct {
	// Confirmed is false if the donation transfer failed. Nothing was
	// distributed in that case.
	Confirmed bool
	Matches   []MatchTransfer
	// Legs holds one line for the donation and one for each matching
	// donation.
	Legs []string
}

// Text joins all legs into a single report.
func (r *DistributionResult) Text() string {
	return strings.Join(r.Legs, " ")
}

// ConfirmDonation handles the confirmation of a donation transfer. If the
// donation reached the recipient, every matcher committed to the
// recipient at this moment sends min(donation, available commitment).
func (d Distributor) ConfirmDonation(ctx matching.Context, db matching.KVStore, msg *OnDonationConfirmedMsg) (*DistributionResult, error) {
	handle := matching.TransferHandle(msg.TransferID)
	t, ok, err := d.protocol.Confirm(ctx, db, handle, func(t *PendingTransfer) error {
		if t.Kind != KindDonation || t.Donor != msg.Donor || t.Recipient != msg.Recipient || !t.Amount.Equals(msg.Amount) {
			return errors.Wrapf(errors.ErrInput, "confirmation does not match donation transfer %d", t.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return &DistributionResult{Confirmed: false}, nil
	}

	res := &DistributionResult{
		Confirmed: true,
		Legs:      []string{fmt.Sprintf("%s donated %s to %s", t.Donor, t.Amount, t.Recipient)},
	}
	commitments, err := d.ledger.List(db, t.Recipient)
	if err != nil {
		return nil, err
	}
	for _, c := range commitments {
		matched := coin.Min(t.Amount, c.Available())
		if matched.IsZero() {
			continue
		}
		m, err := d.sendMatchingDonation(ctx, db, c, matched)
		if err != nil {
			return nil, errors.Wrapf(err, "matching donation of %s", c.Matcher)
		}
		res.Matches = append(res.Matches, *m)
		res.Legs = append(res.Legs, fmt.Sprintf("%s sent a matching donation of %s to %s", c.Matcher, matched, c.Recipient))
	}
	matching.GetLogger(ctx).Info(res.Text())
	return res, nil
}

func (d Distributor) sendMatchingDonation(ctx matching.Context, db matching.KVStore, c *Commitment, matched coin.Amount) (*MatchTransfer, error) {
	if err := d.ledger.Reserve(db, c.Recipient, c.Matcher, matched); err != nil {
		return nil, err
	}
	t := &PendingTransfer{
		Kind:        KindMatch,
		Recipient:   c.Recipient,
		Matcher:     c.Matcher,
		Destination: c.Recipient,
		Amount:      matched,
	}
	handle, err := d.protocol.Issue(ctx, db, t, func(h matching.TransferHandle) matching.Msg {
		return &SetMatcherAmountMsg{
			TransferID: uint64(h),
			Recipient:  c.Recipient,
			Matcher:    c.Matcher,
			Amount:     matched,
		}
	})
	if err != nil {
		return nil, err
	}
	return &MatchTransfer{Matcher: c.Matcher, Amount: matched, Transfer: handle}, nil
}

// MatcherResult describes the confirmation of a transfer paid out of a
// matcher's commitment.
type MatcherResult struct {
	Kind      TransferKind
	Confirmed bool
	// Remaining is the commitment after the confirmation.
	Remaining coin.Amount
	Text      string
}

// ConfirmMatcherTransfer handles the confirmation of a matching donation
// or a refund. On success the commitment is decreased by the transferred
// amount, on failure only the hold placed when the transfer was issued is
// released.
func (d Distributor) ConfirmMatcherTransfer(ctx matching.Context, db matching.KVStore, msg *SetMatcherAmountMsg) (*MatcherResult, error) {
	handle := matching.TransferHandle(msg.TransferID)
	t, ok, err := d.protocol.Confirm(ctx, db, handle, func(t *PendingTransfer) error {
		if (t.Kind != KindMatch && t.Kind != KindRefund) || t.Matcher != msg.Matcher || t.Recipient != msg.Recipient || !t.Amount.Equals(msg.Amount) {
			return errors.Wrapf(errors.ErrInput, "confirmation does not match transfer %d", t.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	remaining, err := d.ledger.Release(db, t.Recipient, t.Matcher, t.Amount, ok)
	if err != nil {
		return nil, err
	}

	res := &MatcherResult{Kind: t.Kind, Confirmed: ok, Remaining: remaining}
	switch {
	case !ok:
		res.Text = fmt.Sprintf("%s of %s to %s failed, %s is still committed to match donations to %s", t.Kind, t.Amount, t.Destination, t.Matcher, t.Recipient)
	case t.Kind == KindRefund:
		res.Text = rescindText(t.Matcher, t.Recipient, t.Amount, remaining)
	default:
		res.Text = fmt.Sprintf("%s sent a matching donation of %s to %s, %s remains committed", t.Matcher, t.Amount, t.Recipient, remaining)
	}
	matching.GetLogger(ctx).Info(res.Text, "transfer", t.ID)
	return res, nil
}
