package donation

import (
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/gconf"
)

const packageName = "donation"

const (
	// DefaultCallbackGas is the fee budget attached to every
	// confirmation callback.
	DefaultCallbackGas int64 = 20000000000000

	// DefaultMaxMatchers limits how many matchers can be committed to a
	// single recipient.
	DefaultMaxMatchers int32 = 64
)

// Configuration of the donation extension.
type Configuration struct {
	CallbackGas int64 `json:"callback_gas"`
	MaxMatchers int32 `json:"max_matchers"`
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
	var errs error
	if c.CallbackGas <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "callback gas must be positive"))
	}
	if c.MaxMatchers <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "max matchers must be positive"))
	}
	return errs
}

// DefaultConfiguration is used when the extension was not configured.
func DefaultConfiguration() Configuration {
	return Configuration{
		CallbackGas: DefaultCallbackGas,
		MaxMatchers: DefaultMaxMatchers,
	}
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, errors.Wrap(err, "donation configuration")
	}
}
