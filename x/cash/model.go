package cash

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/orm"
	amino "github.com/tendermint/go-amino"
)

const bucketName = "cash"

var cdc = amino.NewCodec()

// Wallet holds the balance of a single account.
type Wallet struct {
	Balance coin.Amount `json:"balance"`
}

var _ matching.Persistent = (*Wallet)(nil)

// Marshal implements matching.Persistent.
func (w *Wallet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(w)
}

// Unmarshal implements matching.Persistent.
func (w *Wallet) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, w)
}

// Validate returns an error if the wallet state is invalid.
func (w *Wallet) Validate() error {
	return errors.Wrap(w.Balance.Validate(), "balance")
}

// WalletBucket stores wallets indexed by account.
type WalletBucket struct {
	orm.Bucket
}

// NewWalletBucket returns a bucket for managing wallets.
func NewWalletBucket() WalletBucket {
	return WalletBucket{Bucket: orm.NewBucket(bucketName)}
}

// Get returns the wallet of given account. A missing wallet is returned as
// an empty one.
func (b WalletBucket) Get(db matching.ReadOnlyKVStore, acct matching.AccountID) (*Wallet, error) {
	var w Wallet
	switch err := b.One(db, []byte(acct), &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{Balance: coin.NewAmount(0)}, nil
	default:
		return nil, err
	}
}

// Save stores the wallet. An empty wallet is removed from the database.
func (b WalletBucket) Save(db matching.KVStore, acct matching.AccountID, w *Wallet) error {
	if w.Balance.IsZero() {
		return b.Delete(db, []byte(acct))
	}
	return b.Put(db, []byte(acct), w)
}
