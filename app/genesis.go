package app

import (
	"encoding/json"
	"io/ioutil"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/errors"
)

// Genesis file format.
type Genesis struct {
	AppState matching.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return &gen, nil
}

const genesisKey = "_app:genesis"

func isInitialized(db matching.ReadOnlyKVStore) (bool, error) {
	ok, err := db.Has([]byte(genesisKey))
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

func markInitialized(db matching.KVStore) error {
	if err := db.Set([]byte(genesisKey), []byte{1}); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
