package reader

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		wei  string
		want string
	}{
		{"0", "0"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"1", "0.000000000000000001"},
		{"123456000000000000000", "123.456"},
		{"-2500000000000000000", "-2.5"},
	}

	for _, tc := range cases {
		wei, ok := new(big.Int).SetString(tc.wei, 10)
		require.True(t, ok)
		assert.Equal(t, tc.want, FormatUnits(wei), tc.wei)
	}
}

func TestFormatUnitsNil(t *testing.T) {
	assert.Equal(t, "0", FormatUnits(nil))
}

func TestFormatUnitsFixed(t *testing.T) {
	wei, _ := new(big.Int).SetString("1509900000000000000", 10)
	assert.Equal(t, "1.50", FormatUnitsFixed(wei, 2))
	assert.Equal(t, "0.00", FormatUnitsFixed(big.NewInt(0), 2))
}

func TestParseUnits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{".5", "500000000000000000"},
		{"-2.5", "-2500000000000000000"},
	}

	for _, tc := range cases {
		got, err := ParseUnits(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.String(), tc.in)
	}
}

func TestParseUnitsRoundTrip(t *testing.T) {
	for _, s := range []string{"1", "1.5", "0.000000000000000001", "42.000001"} {
		wei, err := ParseUnits(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatUnits(wei))
	}
}

func TestParseUnitsRejectsInvalid(t *testing.T) {
	for _, s := range []string{"", "abc", "1.2.3", "0.0000000000000000001"} {
		_, err := ParseUnits(s)
		assert.Error(t, err, s)
	}
}

func TestWholeTokens(t *testing.T) {
	wei, _ := new(big.Int).SetString("2999999999999999999", 10)
	assert.Equal(t, int64(2), WholeTokens(wei))
	assert.Equal(t, int64(0), WholeTokens(nil))
	assert.Equal(t, int64(0), WholeTokens(big.NewInt(-5)))
}

func TestTokensToWei(t *testing.T) {
	assert.Equal(t, "3000000000000000000", TokensToWei(3).String())
}
