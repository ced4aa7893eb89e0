package coin

import (
	"encoding/json"
	"math/big"
	"regexp"
	"strings"

	"github.com/ryancwalsh/donation-matching/errors"
)

// isDecimal is the RegExp to ensure a valid amount representation: a non
// empty sequence of decimal digits, no sign.
var isDecimal = regexp.MustCompile(`^[0-9]+$`).MatchString

// Amount is an arbitrary precision, non negative integer amount of the
// ledger currency. The zero value is a valid zero amount.
//
// Amount is immutable. All operations return a new instance.
type Amount struct {
	i *big.Int
}

// NewAmount returns an amount of given value.
func NewAmount(v uint64) Amount {
	return Amount{i: new(big.Int).SetUint64(v)}
}

// NewAmountFromBig returns an amount holding a copy of given value. It fails
// if the value is negative.
func NewAmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, nil
	}
	if v.Sign() < 0 {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "negative value %s", v)
	}
	return Amount{i: new(big.Int).Set(v)}, nil
}

// ParseAmount returns an amount represented by given decimal string.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if !isDecimal(s) {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "invalid amount %q", s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "invalid amount %q", s)
	}
	return Amount{i: v}, nil
}

// MustParseAmount is like ParseAmount but panics on an invalid input.
// Use it only for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// big returns the value as a big integer. Do not modify the result.
func (a Amount) big() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return a.i
}

// BigInt returns a copy of the value.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(a.big())
}

// IsZero returns true if the amount is 0.
func (a Amount) IsZero() bool {
	return a.big().Sign() == 0
}

// IsPositive returns true if the value is greater than 0.
func (a Amount) IsPositive() bool {
	return a.big().Sign() > 0
}

// Add combines two amounts. Amount has no upper bound so the
// addition cannot overflow.
func (a Amount) Add(o Amount) Amount {
	return Amount{i: new(big.Int).Add(a.big(), o.big())}
}

// Subtract given amount. It fails if the result would be negative.
func (a Amount) Subtract(o Amount) (Amount, error) {
	if a.Compare(o) < 0 {
		return Amount{}, errors.Wrapf(errors.ErrInsufficientAmount, "cannot subtract %s from %s", o, a)
	}
	return Amount{i: new(big.Int).Sub(a.big(), o.big())}, nil
}

// SaturatingSubtract returns a-o or zero if o is greater than a.
func (a Amount) SaturatingSubtract(o Amount) Amount {
	if a.Compare(o) <= 0 {
		return Amount{}
	}
	return Amount{i: new(big.Int).Sub(a.big(), o.big())}
}

// Compare returns 1 if a is larger, -1 if o is larger, 0 if equal.
func (a Amount) Compare(o Amount) int {
	return a.big().Cmp(o.big())
}

// Equals returns true if both amounts represent the same value.
func (a Amount) Equals(o Amount) bool {
	return a.Compare(o) == 0
}

// IsGTE returns true if a is at least as large as o.
func (a Amount) IsGTE(o Amount) bool {
	return a.Compare(o) >= 0
}

// Min returns the smaller of two amounts.
func Min(a, b Amount) Amount {
	if a.Compare(b) <= 0 {
		return a
	}
	return b
}

// Sum returns the total of all given amounts.
func Sum(amounts ...Amount) Amount {
	total := new(big.Int)
	for _, a := range amounts {
		total.Add(total, a.big())
	}
	return Amount{i: total}
}

// Validate returns an error if the amount is negative. This can only happen
// when the amount was created outside of this package API.
func (a Amount) Validate() error {
	if a.big().Sign() < 0 {
		return errors.Wrapf(errors.ErrAmount, "negative amount %s", a.big())
	}
	return nil
}

// String returns the decimal representation.
func (a Amount) String() string {
	return a.big().String()
}

// MarshalJSON serializes the amount as a decimal string, so that values
// exceeding the float precision survive a JSON round trip.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a JSON number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return errors.Wrap(errors.ErrAmount, "cannot decode amount")
		}
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalAmino uses the decimal string as the binary representation.
func (a Amount) MarshalAmino() (string, error) {
	return a.String(), nil
}

// UnmarshalAmino is the counterpart of MarshalAmino.
func (a *Amount) UnmarshalAmino(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
