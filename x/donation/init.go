package donation

import (
	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/gconf"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ matching.Initializer = Initializer{}

// FromGenesis stores the extension configuration. Missing configuration
// leaves the defaults in place. Commitments cannot be created from
// genesis, as every commitment must be backed by a deposit.
func (Initializer) FromGenesis(opts matching.Options, db matching.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, packageName, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
