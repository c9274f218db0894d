package textnorm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmountNotations(t *testing.T) {
	want := decimal.RequireFromString("1000.50")

	for _, in := range []string{"1,000.50", "1.000,50", "1'000.50"} {
		got, err := NormalizeAmount(in)
		require.NoError(t, err, in)
		require.True(t, got.Equal(want), "%s -> %s", in, got)
	}
}

func TestNormalizeAmountGroupingVsFraction(t *testing.T) {
	cases := map[string]string{
		"1.000":     "1000",  // three digits after a lone dot is grouping
		"1,000":     "1000",
		"1.50":      "1.50",
		"1,50":      "1.50",
		"12.345.678": "12345678",
		"40":        "40",
	}
	for in, want := range cases {
		got, err := NormalizeAmount(in)
		require.NoError(t, err, in)
		require.True(t, got.Equal(decimal.RequireFromString(want)), "%s -> %s", in, got)
	}
}

func TestLargestAmountFromSymboledText(t *testing.T) {
	c, ok := LargestAmount("$1,000.50 dinner for 2")
	require.True(t, ok)
	require.True(t, c.Value.Equal(decimal.RequireFromString("1000.50")))
	require.Equal(t, "1,000.50", c.Raw)
}

func TestLargestAmountPrefersBiggest(t *testing.T) {
	c, ok := LargestAmount("2 beers for 150 pesos")
	require.True(t, ok)
	require.True(t, c.Value.Equal(decimal.NewFromInt(150)))
}

func TestLargestAmountNone(t *testing.T) {
	_, ok := LargestAmount("coffee with friends")
	require.False(t, ok)
}
