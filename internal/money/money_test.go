package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCents(t *testing.T) {
	assert.Equal(t, "25.50", FromCents(2550).String())
	assert.Equal(t, "-0.01", FromCents(-1).String())
	assert.Equal(t, int64(2550), FromCents(2550).Cents())
}

func TestArithmetic(t *testing.T) {
	a := MustParse("100.00")
	b := MustParse("25.50")

	assert.Equal(t, "125.50", a.Add(b).String())
	assert.Equal(t, "74.50", a.Sub(b).String())
	assert.Equal(t, "-25.50", b.Neg().String())
	assert.Equal(t, "51.00", b.MulInt(2).String())
}

func TestPercentRoundsHalfUpToMinorUnit(t *testing.T) {
	cases := []struct {
		base, pct, want string
	}{
		{"20.00", "10", "2.00"},
		{"200.00", "5", "10.00"},
		{"0.05", "10", "0.01"},  // 0.005 rounds up
		{"0.04", "10", "0.00"},  // 0.004 rounds down
		{"33.33", "33", "11.00"},// 10.9989 → 11.00
	}
	for _, c := range cases {
		pct, err := decimal.NewFromString(c.pct)
		require.NoError(t, err)
		got := MustParse(c.base).Percent(pct)
		assert.Equal(t, c.want, got.String(), "%s%% of %s", c.pct, c.base)
	}
}

func TestMulDecimalWeighted(t *testing.T) {
	price := MustParse("3.99")
	weight := decimal.RequireFromString("1.255")
	// 3.99 × 1.255 = 5.00745 → 5.01
	assert.Equal(t, "5.01", price.MulDecimal(weight).String())
}

func TestExactEquality(t *testing.T) {
	assert.True(t, MustParse("10.00").Equal(FromCents(1000)))
	assert.False(t, MustParse("10.00").Equal(FromCents(1001)))
	assert.True(t, MustParse("9.99").LessThan(MustParse("10.00")))
}

func TestSum(t *testing.T) {
	total := Sum(MustParse("10.00"), MustParse("5.25"), MustParse("0.75"))
	assert.Equal(t, "16.00", total.String())
	assert.True(t, Sum().IsZero())
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}
	in := payload{Amount: MustParse("1234.56")}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Amount.Equal(out.Amount))
}
