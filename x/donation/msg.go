package donation

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
)

const (
	pathOfferMatchingFunds   = "donation/offer_matching_funds"
	pathRescindMatchingFunds = "donation/rescind_matching_funds"
	pathDonate               = "donation/donate"
	pathSetMatcherAmount     = "donation/set_matcher_amount"
	pathOnDonationConfirmed  = "donation/on_donation_confirmed"
)

// OfferMatchingFundsMsg commits the attached deposit of the caller to
// match donations to the recipient.
type OfferMatchingFundsMsg struct {
	Recipient matching.AccountID `json:"recipient"`
}

var _ matching.Msg = (*OfferMatchingFundsMsg)(nil)

// Path implements matching.Msg.
func (*OfferMatchingFundsMsg) Path() string {
	return pathOfferMatchingFunds
}

// Validate implements matching.Msg.
func (m *OfferMatchingFundsMsg) Validate() error {
	return errors.Wrap(m.Recipient.Validate(), "recipient")
}

// RescindMatchingFundsMsg returns up to Amount of the caller's commitment
// to the recipient back to the caller.
type RescindMatchingFundsMsg struct {
	Recipient matching.AccountID `json:"recipient"`
	// Amount is a decimal string.
	Amount string `json:"amount"`
}

var _ matching.Msg = (*RescindMatchingFundsMsg)(nil)

// Path implements matching.Msg.
func (*RescindMatchingFundsMsg) Path() string {
	return pathRescindMatchingFunds
}

// Validate implements matching.Msg.
func (m *RescindMatchingFundsMsg) Validate() error {
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	_, err := m.RequestedAmount()
	return err
}

// RequestedAmount parses the amount to rescind. The amount must be
// positive.
func (m *RescindMatchingFundsMsg) RequestedAmount() (coin.Amount, error) {
	amount, err := coin.ParseAmount(m.Amount)
	if err != nil {
		return coin.Amount{}, err
	}
	if !amount.IsPositive() {
		return coin.Amount{}, errors.Wrap(errors.ErrAmount, "amount to rescind must be greater than zero")
	}
	return amount, nil
}

// DonateMsg forwards the attached deposit to the recipient and triggers
// matching donations.
type DonateMsg struct {
	Recipient matching.AccountID `json:"recipient"`
}

var _ matching.Msg = (*DonateMsg)(nil)

// Path implements matching.Msg.
func (*DonateMsg) Path() string {
	return pathDonate
}

// Validate implements matching.Msg.
func (m *DonateMsg) Validate() error {
	return errors.Wrap(m.Recipient.Validate(), "recipient")
}

// SetMatcherAmountMsg confirms a transfer paid out of a matcher's
// commitment, either a matching donation or a refund. On success the
// commitment is set to its current value minus Amount. It can only be sent
// by the contract to itself.
type SetMatcherAmountMsg struct {
	TransferID uint64             `json:"transfer_id"`
	Recipient  matching.AccountID `json:"recipient"`
	Matcher    matching.AccountID `json:"matcher"`
	Amount     coin.Amount        `json:"amount"`
}

var _ matching.Msg = (*SetMatcherAmountMsg)(nil)

// Path implements matching.Msg.
func (*SetMatcherAmountMsg) Path() string {
	return pathSetMatcherAmount
}

// Validate implements matching.Msg.
func (m *SetMatcherAmountMsg) Validate() error {
	var errs error
	if m.TransferID == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "transfer id"))
	}
	if err := m.Recipient.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "recipient"))
	}
	if err := m.Matcher.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "matcher"))
	}
	if !m.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	return errs
}

// OnDonationConfirmedMsg confirms the primary transfer of a donation. On
// success matching donations are issued. It can only be sent by the
// contract to itself.
type OnDonationConfirmedMsg struct {
	TransferID uint64             `json:"transfer_id"`
	Donor      matching.AccountID `json:"donor"`
	Recipient  matching.AccountID `json:"recipient"`
	Amount     coin.Amount        `json:"amount"`
}

var _ matching.Msg = (*OnDonationConfirmedMsg)(nil)

// Path implements matching.Msg.
func (*OnDonationConfirmedMsg) Path() string {
	return pathOnDonationConfirmed
}

// Validate implements matching.Msg.
func (m *OnDonationConfirmedMsg) Validate() error {
	var errs error
	if m.TransferID == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "transfer id"))
	}
	if err := m.Donor.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "donor"))
	}
	if err := m.Recipient.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "recipient"))
	}
	if !m.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	return errs
}
