package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEtherToWeiExact(t *testing.T) {
	tests := []struct {
		amount string
		wei    string
	}{
		{"1", "1000000000000000000"},
		{"0.1", "100000000000000000"},
		{"0.3", "300000000000000000"},
		{"0.000000000000000001", "1"},
		{"123456.789", "123456789000000000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			dec, err := ParseEtherAmount(tc.amount)
			require.NoError(t, err)

			wei, err := EtherToWei(dec)
			require.NoError(t, err)

			expected, ok := new(big.Int).SetString(tc.wei, 10)
			require.True(t, ok)
			assert.Equal(t, 0, wei.Cmp(expected), "got %s", wei)
		})
	}
}

func TestWeiToEtherRoundTrip(t *testing.T) {
	for _, amount := range []string{"0.1", "1", "0.000000000000000001", "42.000000000000000042"} {
		dec, err := ParseEtherAmount(amount)
		require.NoError(t, err)

		wei, err := EtherToWei(dec)
		require.NoError(t, err)

		back := WeiToEther(wei)
		assert.True(t, back.Equal(dec), "round trip of %s gave %s", amount, back)
	}
}

func TestParseEtherAmountRejects(t *testing.T) {
	for _, amount := range []string{"", "0", "-0.5", "NaN", "one", "0.0000000000000000001"} {
		t.Run(amount, func(t *testing.T) {
			_, err := ParseEtherAmount(amount)
			assert.Error(t, err)
		})
	}
}
