package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCoins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"zero", "0", "0"},
		{"one coin", "1000000000000000000", "1"},
		{"fractional", "2500000000000000000", "2.5"},
		{"sub-coin", "10000000000000000", "0.01"},
		{"large", "1200000000000000000000", "1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := new(big.Int).SetString(tt.in, 10)
			assert.True(t, ok)
			assert.Equal(t, tt.want, FormatCoins(amount))
		})
	}
}

func TestFormatCoins_Nil(t *testing.T) {
	assert.Equal(t, "0", FormatCoins(nil))
}

func TestAddressEqual(t *testing.T) {
	assert.True(t, Address("0xAbC").Equal("0xabc"))
	assert.False(t, Address("0xAbC").Equal("0xdef"))
	assert.True(t, Address("").Equal(""))
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address("").IsZero())
	assert.False(t, Address("0x1").IsZero())
}
