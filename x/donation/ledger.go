package donation

import (
	"encoding/binary"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/orm"
)

// Ledger stores commitments addressed by recipient and then by matcher.
//
// A commitment of zero is never stored. Matchers of a recipient are
// listed in lexicographic order.
type Ledger struct {
	bucket orm.Bucket
}

// NewLedger returns a ledger using the default bucket.
func NewLedger() Ledger {
	return Ledger{bucket: orm.NewBucket("cmt")}
}

// recipientPrefix is the key prefix shared by all commitments to given
// recipient. The length prefix keeps recipient "ab" with matcher "c" apart
// from recipient "a" with matcher "bc".
func recipientPrefix(recipient matching.AccountID) []byte {
	buf := make([]byte, binary.MaxVarintLen64+len(recipient))
	n := binary.PutUvarint(buf, uint64(len(recipient)))
	n += copy(buf[n:], recipient)
	return buf[:n]
}

func commitmentKey(recipient, matcher matching.AccountID) []byte {
	return append(recipientPrefix(recipient), matcher...)
}

// Commitment returns the commitment of matcher to recipient. ErrNotFound
// is returned if there is none.
func (l Ledger) Commitment(db matching.ReadOnlyKVStore, recipient, matcher matching.AccountID) (*Commitment, error) {
	var c Commitment
	if err := l.bucket.One(db, commitmentKey(recipient, matcher), &c); err != nil {
		return nil, errors.Wrapf(err, "commitment of %s to %s", matcher, recipient)
	}
	return &c, nil
}

// Get returns the amount committed by matcher to recipient. Absence of a
// commitment is a zero amount. Holds are ignored, use Commitment to read
// the available part.
func (l Ledger) Get(db matching.ReadOnlyKVStore, recipient, matcher matching.AccountID) (coin.Amount, error) {
	c, err := l.Commitment(db, recipient, matcher)
	switch {
	case err == nil:
		return c.Amount, nil
	case errors.ErrNotFound.Is(err):
		return coin.NewAmount(0), nil
	default:
		return coin.Amount{}, err
	}
}

// Set upserts the committed amount. Setting zero removes the commitment.
// The amount cannot be set below what is held for unconfirmed transfers.
// Confirmed refunds and matching donations store their result through
// Release, which calls Set.
func (l Ledger) Set(db matching.KVStore, recipient, matcher matching.AccountID, amount coin.Amount) error {
	c, err := l.Commitment(db, recipient, matcher)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		c = &Commitment{Recipient: recipient, Matcher: matcher, Reserved: coin.NewAmount(0)}
	default:
		return err
	}
	if !amount.IsGTE(c.Reserved) {
		return errors.Wrapf(errors.ErrState, "%s of the commitment is held by unconfirmed transfers", c.Reserved)
	}
	c.Amount = amount
	return l.save(db, c)
}

func (l Ledger) save(db matching.KVStore, c *Commitment) error {
	if c.Amount.IsZero() {
		return l.Delete(db, c.Recipient, c.Matcher)
	}
	return l.bucket.Put(db, commitmentKey(c.Recipient, c.Matcher), c)
}

// Delete removes a commitment. Deleting a missing commitment is a noop.
func (l Ledger) Delete(db matching.KVStore, recipient, matcher matching.AccountID) error {
	return l.bucket.Delete(db, commitmentKey(recipient, matcher))
}

// List returns all commitments to given recipient, ordered by matcher.
func (l Ledger) List(db matching.ReadOnlyKVStore, recipient matching.AccountID) ([]*Commitment, error) {
	it, err := l.bucket.Iterate(db, recipientPrefix(recipient))
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []*Commitment
	for {
		_, raw, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		var c Commitment
		if err := c.Unmarshal(raw); err != nil {
			return nil, errors.Wrap(errors.ErrModel, err.Error())
		}
		res = append(res, &c)
	}
}

// ListMatchers returns all matchers committed to given recipient, ordered
// lexicographically.
func (l Ledger) ListMatchers(db matching.ReadOnlyKVStore, recipient matching.AccountID) ([]matching.AccountID, error) {
	commitments, err := l.List(db, recipient)
	if err != nil {
		return nil, err
	}
	matchers := make([]matching.AccountID, len(commitments))
	for i, c := range commitments {
		matchers[i] = c.Matcher
	}
	return matchers, nil
}

// Add increases the commitment by amount and returns the new total. At
// most maxMatchers matchers can be committed to one recipient.
func (l Ledger) Add(db matching.KVStore, recipient, matcher matching.AccountID, amount coin.Amount, maxMatchers int32) (coin.Amount, error) {
	if !amount.IsPositive() {
		return coin.Amount{}, errors.Wrap(errors.ErrAmount, "amount must be greater than zero")
	}
	c, err := l.Commitment(db, recipient, matcher)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		matchers, err := l.ListMatchers(db, recipient)
		if err != nil {
			return coin.Amount{}, err
		}
		if int32(len(matchers)) >= maxMatchers {
			return coin.Amount{}, errors.Wrapf(errors.ErrLimit, "%s already has %d matchers", recipient, len(matchers))
		}
		c = &Commitment{Recipient: recipient, Matcher: matcher, Amount: coin.NewAmount(0), Reserved: coin.NewAmount(0)}
	default:
		return coin.Amount{}, err
	}
	c.Amount = c.Amount.Add(amount)
	if err := l.save(db, c); err != nil {
		return coin.Amount{}, err
	}
	return c.Amount, nil
}

// Reserve holds amount of the commitment for a transfer that is not
// confirmed yet. Held funds cannot be reserved again.
func (l Ledger) Reserve(db matching.KVStore, recipient, matcher matching.AccountID, amount coin.Amount) error {
	c, err := l.Commitment(db, recipient, matcher)
	if err != nil {
		return err
	}
	if !c.Available().IsGTE(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "only %s of the commitment is available", c.Available())
	}
	c.Reserved = c.Reserved.Add(amount)
	return l.save(db, c)
}

// Release frees amount previously held by Reserve. If spent is true the
// amount left escrow and the commitment is decreased by it, otherwise the
// commitment stays as it was. The remaining commitment is returned.
func (l Ledger) Release(db matching.KVStore, recipient, matcher matching.AccountID, amount coin.Amount, spent bool) (coin.Amount, error) {
	c, err := l.Commitment(db, recipient, matcher)
	if err != nil {
		return coin.Amount{}, err
	}
	reserved, err := c.Reserved.Subtract(amount)
	if err != nil {
		return coin.Amount{}, errors.Wrapf(errors.ErrState, "release %s, but only %s is held", amount, c.Reserved)
	}
	c.Reserved = reserved
	if err := l.save(db, c); err != nil {
		return coin.Amount{}, err
	}
	if !spent {
		return c.Amount, nil
	}
	// Amount is never below the reserved part, so this cannot fail.
	left, err := c.Amount.Subtract(amount)
	if err != nil {
		return coin.Amount{}, errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := l.Set(db, recipient, matcher, left); err != nil {
		return coin.Amount{}, err
	}
	return left, nil
}
