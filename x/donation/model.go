package donation

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
)

// Commitment is the amount a matcher has escrowed to match donations to a
// recipient.
type Commitment struct {
	Recipient matching.AccountID `json:"recipient"`
	Matcher   matching.AccountID `json:"matcher"`
	// Amount is the escrowed amount that was not spent or refunded yet.
	Amount coin.Amount `json:"amount"`
	// Reserved is the part of Amount promised to transfers that were
	// issued but are not confirmed yet.
	Reserved coin.Amount `json:"reserved"`
}

var _ matching.Persistent = (*Commitment)(nil)

// Marshal implements matching.Persistent.
func (c *Commitment) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

// Unmarshal implements matching.Persistent.
func (c *Commitment) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

// Validate returns an error if the commitment is not in a state that can
// be stored.
func (c *Commitment) Validate() error {
	var errs error
	if err := c.Recipient.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "recipient"))
	}
	if err := c.Matcher.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "matcher"))
	}
	if !c.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "stored commitment must be positive"))
	}
	if !c.Amount.IsGTE(c.Reserved) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrState, "reserved %s exceeds %s", c.Reserved, c.Amount))
	}
	return errs
}

// Available returns the part of the commitment that can be promised to a
// new transfer.
func (c *Commitment) Available() coin.Amount {
	return c.Amount.SaturatingSubtract(c.Reserved)
}

// TransferKind tells what an outbound transfer was issued for.
type TransferKind string

const (
	// KindDonation is the primary donation forwarded to the recipient.
	KindDonation TransferKind = "donation"
	// KindMatch is a matching donation paid from a matcher's commitment.
	KindMatch TransferKind = "match"
	// KindRefund returns rescinded funds to the matcher.
	KindRefund TransferKind = "refund"
)

// PendingTransfer is an issued transfer waiting for confirmation. It is
// removed by the confirmation, so that every transfer is confirmed at most
// once.
type PendingTransfer struct {
	ID          uint64             `json:"id"`
	Kind        TransferKind       `json:"kind"`
	Recipient   matching.AccountID `json:"recipient"`
	Matcher     matching.AccountID `json:"matcher,omitempty"`
	Donor       matching.AccountID `json:"donor,omitempty"`
	Destination matching.AccountID `json:"destination"`
	Amount      coin.Amount        `json:"amount"`
}

var _ matching.Persistent = (*PendingTransfer)(nil)

// Handle returns the host transfer handle.
func (p *PendingTransfer) Handle() matching.TransferHandle {
	return matching.TransferHandle(p.ID)
}

// Marshal implements matching.Persistent.
func (p *PendingTransfer) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

// Unmarshal implements matching.Persistent.
func (p *PendingTransfer) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, p)
}

// Validate returns an error if the pending transfer is incomplete.
func (p *PendingTransfer) Validate() error {
	var errs error
	if p.ID == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "id"))
	}
	if err := p.Recipient.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "recipient"))
	}
	if err := p.Destination.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "destination"))
	}
	if !p.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	switch p.Kind {
	case KindDonation:
		if err := p.Donor.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrap(err, "donor"))
		}
	case KindMatch, KindRefund:
		if err := p.Matcher.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrap(err, "matcher"))
		}
	default:
		errs = errors.Append(errs, errors.Wrapf(errors.ErrInput, "unknown kind %q", p.Kind))
	}
	return errs
}
