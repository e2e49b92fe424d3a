package ledger

import (
	"math/big"
	"strings"
)

// Address is a ledger account identifier. Addresses are opaque strings as far
// as this client is concerned; the provider is the authority on their format.
type Address string

// IsZero reports whether the address is unset (no connected account).
func (a Address) IsZero() bool {
	return a == ""
}

// Equal compares two addresses ignoring case, since hex-encoded ledger
// addresses are case-insensitive on the wire.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(string(a), string(other))
}

// CoinUnit is the number of base units per whole coin. All balances and
// prices travel in base units; scaling is a display concern only.
var CoinUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatCoins renders a base-unit amount as a decimal coin amount for
// display. Trailing fractional zeros are trimmed.
func FormatCoins(baseUnits *big.Int) string {
	if baseUnits == nil {
		return "0"
	}
	whole, frac := new(big.Int).QuoRem(baseUnits, CoinUnit, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := strings.TrimRight(padLeft(frac.String(), 18), "0")
	return whole.String() + "." + fracStr
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// CallRequest describes a read-only contract invocation. Calls never change
// ledger state and return their result synchronously.
type CallRequest struct {
	To     Address
	Method string
	Args   []any
}

// SendRequest describes a mutating contract invocation. Sends carry an
// optional value (in base units) and a fixed gas allowance; the provider
// blocks until the ledger acknowledges or rejects the transaction.
type SendRequest struct {
	From   Address
	To     Address
	Method string
	Args   []any
	Value  *big.Int
	Gas    uint64
}

// Receipt is the ledger's acknowledgment of an accepted send.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}
