package cash

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
	"github.com/ryancwalsh/donation-matching/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
type GenesisAccount struct {
	Account matching.AccountID `json:"account"`
	Balance coin.Amount        `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ matching.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts matching.Options, kv matching.KVStore) error {
	accts := []GenesisAccount{}
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController()
	for i, acct := range accts {
		if err := acct.Account.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.IssueCoins(kv, acct.Account, acct.Balance); err != nil {
			return errors.Wrapf(err, "account %s", acct.Account)
		}
	}
	return nil
}
