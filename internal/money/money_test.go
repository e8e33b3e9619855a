package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestRoundHalfUpAndHalfEven(t *testing.T) {
	cases := []struct {
		in       string
		mode     RoundingMode
		expected string
	}{
		{"10.005", HalfUp, "10.01"},
		{"10.005", HalfEven, "10.00"},
		{"10.015", HalfEven, "10.02"},
		{"10.015", HalfUp, "10.02"},
		{"0.125", HalfEven, "0.12"},
		{"0.135", HalfEven, "0.14"},
		{"7.994", HalfUp, "7.99"},
		{"0", HalfUp, "0.00"},
	}
	for _, tc := range cases {
		got, err := Round(dec(t, tc.in), tc.mode)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, Format(got), "round(%s, %s)", tc.in, tc.mode)
	}
}

func TestRoundRejectsNegative(t *testing.T) {
	_, err := Round(dec(t, "-0.01"), HalfUp)
	require.ErrorIs(t, err, ErrInvalidAmount)

	assert.Panics(t, func() { MustRound(dec(t, "-1"), HalfEven) })
}

func TestRoundSignedIsSymmetric(t *testing.T) {
	assert.Equal(t, "-10.01", Format(RoundSigned(dec(t, "-10.005"), HalfUp)))
	assert.Equal(t, "-10.00", Format(RoundSigned(dec(t, "-10.005"), HalfEven)))
	assert.Equal(t, "10.01", Format(RoundSigned(dec(t, "10.005"), HalfUp)))
}

func TestParseRoundingMode(t *testing.T) {
	m, err := ParseRoundingMode("")
	require.NoError(t, err)
	assert.Equal(t, HalfUp, m)

	m, err = ParseRoundingMode(" HALF_EVEN ")
	require.NoError(t, err)
	assert.Equal(t, HalfEven, m)

	_, err = ParseRoundingMode("ceiling")
	require.Error(t, err)
}

func TestPercentKeepsFullPrecision(t *testing.T) {
	got := Percent(dec(t, "33.33"), 15)
	assert.True(t, got.Equal(dec(t, "4.9995")), "got %s", got)
	assert.Equal(t, "5.00", Format(MustRound(got, HalfUp)))
}

func TestSumRoundsOnce(t *testing.T) {
	parts := make([]decimal.Decimal, 0, 10)
	for i := 0; i < 10; i++ {
		parts = append(parts, dec(t, "0.005"))
	}
	assert.Equal(t, "0.05", Format(MustRound(Sum(parts...), HalfUp)))
	assert.Equal(t, "0.05", Format(MustRound(Sum(parts...), HalfEven)))
}

func TestParseAndMinorUnits(t *testing.T) {
	d, err := Parse(" 19.99 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1999), MinorUnits(d))

	_, err = Parse("abc")
	require.ErrorIs(t, err, ErrInvalidAmount)
}
