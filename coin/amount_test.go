package coin

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/ryancwalsh/donation-matching/matchingtest/assert"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    string
		wantErr *errors.Error
	}{
		"zero":            {raw: "0", want: "0"},
		"small":           {raw: "42", want: "42"},
		"leading zeros":   {raw: "0007", want: "7"},
		"surrounding ws":  {raw: " 12 ", want: "12"},
		"beyond uint64":   {raw: "340282366920938463463374607431768211456", want: "340282366920938463463374607431768211456"},
		"empty":           {raw: "", wantErr: errors.ErrAmount},
		"negative":        {raw: "-5", wantErr: errors.ErrAmount},
		"explicit plus":   {raw: "+5", wantErr: errors.ErrAmount},
		"fraction":        {raw: "1.5", wantErr: errors.ErrAmount},
		"not a number":    {raw: "ten", wantErr: errors.ErrAmount},
		"hex is rejected": {raw: "0x10", wantErr: errors.ErrAmount},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAmount(tc.raw)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	var zero Amount
	ten := NewAmount(10)
	three := NewAmount(3)

	assert.Equal(t, true, zero.IsZero())
	assert.Equal(t, false, zero.IsPositive())
	assert.Text(t, "0", zero)
	assert.Text(t, "13", ten.Add(three))
	assert.Text(t, "10", ten.Add(zero))

	diff, err := ten.Subtract(three)
	assert.Nil(t, err)
	assert.Text(t, "7", diff)

	_, err = three.Subtract(ten)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	assert.Equal(t, true, three.SaturatingSubtract(ten).IsZero())
	assert.Text(t, "7", ten.SaturatingSubtract(three))

	assert.Text(t, "3", Min(ten, three))
	assert.Text(t, "3", Min(three, ten))
	assert.Text(t, "0", Min(zero, ten))

	assert.Equal(t, 1, ten.Compare(three))
	assert.Equal(t, -1, three.Compare(ten))
	assert.Equal(t, 0, ten.Compare(NewAmount(10)))
	assert.Equal(t, true, ten.IsGTE(ten))
	assert.Equal(t, false, three.IsGTE(ten))
	assert.Equal(t, true, zero.Equals(NewAmount(0)))

	assert.Text(t, "16", Sum(ten, three, three, zero))
	assert.Text(t, "0", Sum())
}

func TestAmountIsImmutable(t *testing.T) {
	a := NewAmount(5)
	b := a.Add(NewAmount(1))
	assert.Text(t, "5", a)
	assert.Text(t, "6", b)

	raw := a.BigInt()
	raw.SetInt64(100)
	assert.Text(t, "5", a)
}

func TestNewAmountFromBig(t *testing.T) {
	a, err := NewAmountFromBig(big.NewInt(12))
	assert.Nil(t, err)
	assert.Text(t, "12", a)

	_, err = NewAmountFromBig(big.NewInt(-1))
	assert.IsErr(t, errors.ErrAmount, err)

	a, err = NewAmountFromBig(nil)
	assert.Nil(t, err)
	assert.Equal(t, true, a.IsZero())
}

func TestAmountJSON(t *testing.T) {
	type holder struct {
		Amount Amount `json:"amount"`
	}

	raw, err := json.Marshal(holder{Amount: MustParseAmount("18446744073709551617")})
	assert.Nil(t, err)
	assert.Equal(t, `{"amount":"18446744073709551617"}`, string(raw))

	var h holder
	assert.Nil(t, json.Unmarshal([]byte(`{"amount":"250"}`), &h))
	assert.Text(t, "250", h.Amount)

	assert.Nil(t, json.Unmarshal([]byte(`{"amount":31}`), &h))
	assert.Text(t, "31", h.Amount)

	err = json.Unmarshal([]byte(`{"amount":"-1"}`), &h)
	assert.IsErr(t, errors.ErrAmount, err)
}
