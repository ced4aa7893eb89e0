package matching

import (
	"github.com/ryancwalsh/donation-matching/errors"
)

// maxAccountIDLength protects the store keys from unbounded identifiers.
const maxAccountIDLength = 256

// AccountID is an opaque string naming a party: a matcher, a recipient, a
// donor or the contract itself. Two identifiers are the same party only if
// they are exactly equal.
type AccountID string

// Validate returns an error if this is not a usable identifier.
func (a AccountID) Validate() error {
	if len(a) == 0 {
		return errors.Wrap(errors.ErrEmpty, "account id")
	}
	if len(a) > maxAccountIDLength {
		return errors.Wrapf(errors.ErrInput, "account id longer than %d", maxAccountIDLength)
	}
	return nil
}

// Equals returns true if both identifiers name the same party.
func (a AccountID) Equals(b AccountID) bool {
	return a == b
}

func (a AccountID) String() string {
	return string(a)
}
