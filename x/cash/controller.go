package cash

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
)

// Controller is the functionality needed by the host runtime to settle
// transfers and deposits.
type Controller interface {
	Balance(db matching.ReadOnlyKVStore, acct matching.AccountID) (coin.Amount, error)
	MoveCoins(db matching.KVStore, src, dest matching.AccountID, amount coin.Amount) error
	IssueCoins(db matching.KVStore, dest matching.AccountID, amount coin.Amount) error
}

// BaseController is a simple implementation of the Controller.
type BaseController struct {
	bucket WalletBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the default wallet bucket.
func NewController() BaseController {
	return BaseController{bucket: NewWalletBucket()}
}

// Balance returns the amount held by given account. An unknown account
// holds nothing.
func (c BaseController) Balance(db matching.ReadOnlyKVStore, acct matching.AccountID) (coin.Amount, error) {
	w, err := c.bucket.Get(db, acct)
	if err != nil {
		return coin.Amount{}, err
	}
	return w.Balance, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient coins, it fails.
func (c BaseController) MoveCoins(db matching.KVStore, src, dest matching.AccountID, amount coin.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return err
	}
	left, err := sender.Balance.Subtract(amount)
	if err != nil {
		return errors.Wrapf(err, "%s holds %s", src, sender.Balance)
	}
	sender.Balance = left
	if err := c.bucket.Save(db, src, sender); err != nil {
		return err
	}

	// Loaded after the sender was saved, so moving to self is a noop.
	recipient, err := c.bucket.Get(db, dest)
	if err != nil {
		return err
	}
	recipient.Balance = recipient.Balance.Add(amount)
	return c.bucket.Save(db, dest, recipient)
}

// IssueCoins adds the given amount of coins to the destination account.
func (c BaseController) IssueCoins(db matching.KVStore, dest matching.AccountID, amount coin.Amount) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	recipient, err := c.bucket.Get(db, dest)
	if err != nil {
		return err
	}
	recipient.Balance = recipient.Balance.Add(amount)
	return c.bucket.Save(db, dest, recipient)
}
