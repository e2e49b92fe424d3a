package ledger

import (
	"context"
	"encoding/json"
	"math/big"
)

// Provider is the boundary to the wallet provider injected by the execution
// environment. It covers account authorization, balance queries, and the
// call/send split for contract interaction.
//
// Keeping this an interface lets tests substitute a fake provider without a
// running daemon.
type Provider interface {
	// RequestAccounts asks the provider to authorize accounts for this
	// client. It may prompt the user; a rejection surfaces as
	// ErrAuthorizationDenied. An empty result means the provider is present
	// but no account is authorized.
	RequestAccounts(ctx context.Context) ([]Address, error)

	// Accounts returns the currently authorized accounts without prompting.
	Accounts(ctx context.Context) ([]Address, error)

	// Balance returns the account balance in base units.
	Balance(ctx context.Context, account Address) (*big.Int, error)

	// Call performs a read-only contract invocation and returns the raw
	// JSON result for the binding layer to decode.
	Call(ctx context.Context, req CallRequest) (json.RawMessage, error)

	// Send performs a mutating contract invocation and blocks until the
	// ledger acknowledges it. An on-ledger revert surfaces as *RevertError.
	Send(ctx context.Context, req SendRequest) (*Receipt, error)
}
