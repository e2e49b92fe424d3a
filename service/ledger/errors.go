package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable means no provider is reachable at the configured
	// endpoint. This is fatal for the session: no ledger interaction is
	// possible until the user installs or starts a provider.
	ErrProviderUnavailable = errors.New("ledger provider unavailable")

	// ErrAuthorizationDenied means the user rejected the account
	// authorization prompt. The caller may offer a retry.
	ErrAuthorizationDenied = errors.New("account authorization denied")

	// ErrNoAccountAuthorized means the provider is present but has no
	// account authorized for this client.
	ErrNoAccountAuthorized = errors.New("no account authorized")

	// ErrNotConnected means a ledger operation was attempted before a
	// successful connect. This is a sequencing bug in the caller, not a
	// runtime condition to retry.
	ErrNotConnected = errors.New("not connected to provider")
)

// RevertError is returned when a send was accepted by the provider but
// reverted on-ledger. Reason carries the ledger-supplied revert reason when
// one was available.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "transaction reverted"
	}
	return fmt.Sprintf("transaction reverted: %s", e.Reason)
}
