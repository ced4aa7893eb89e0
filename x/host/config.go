package host

import (
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/gconf"
)

const packageName = "host"

// DefaultMinCallbackGas is used when the host was not configured.
const DefaultMinCallbackGas int64 = 5000000000000

// Configuration of the host runtime.
type Configuration struct {
	// MinCallbackGas is the smallest budget a callback can be scheduled
	// with.
	MinCallbackGas int64 `json:"min_callback_gas"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// Marshal implements gconf.Configuration.
func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

// Unmarshal implements gconf.Configuration.
func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

// Validate implements gconf.Configuration.
func (c *Configuration) Validate() error {
	if c.MinCallbackGas < 0 {
		return errors.Wrap(errors.ErrInput, "min callback gas must not be negative")
	}
	return nil
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return Configuration{MinCallbackGas: DefaultMinCallbackGas}, nil
	default:
		return conf, err
	}
}
