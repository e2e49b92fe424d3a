package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/deedsync/deedsync/service/ledger"
)

// DeedLedger is a typed proxy for the per-property ownership contract.
type DeedLedger struct {
	backend Backend
	address ledger.Address
	desc    *Descriptor
	logger  *slog.Logger
}

// NewDeedLedger binds the deed ledger contract at address through backend.
// If desc is nil, the default deed ledger descriptor is used.
func NewDeedLedger(backend Backend, address ledger.Address, desc *Descriptor, logger *slog.Logger) *DeedLedger {
	if desc == nil {
		desc = DefaultDeedLedgerDescriptor()
	}
	return &DeedLedger{
		backend: backend,
		address: address,
		desc:    desc,
		logger:  logger,
	}
}

// OwnerOf returns the current owner of the property with the given id.
func (d *DeedLedger) OwnerOf(ctx context.Context, propertyID uint64) (ledger.Address, error) {
	spec, err := d.desc.resolve(OpOwnerOf)
	if err != nil {
		return "", err
	}

	raw, err := d.backend.Call(ctx, ledger.CallRequest{
		To:     d.address,
		Method: spec.Method,
		Args:   []any{propertyID},
	})
	if err != nil {
		return "", fmt.Errorf("owner of property %d: %w", propertyID, err)
	}

	var owner string
	if err := json.Unmarshal(raw, &owner); err != nil {
		return "", fmt.Errorf("decode owner of property %d: %w", propertyID, err)
	}
	if owner == "" {
		return "", fmt.Errorf("property %d has no owner", propertyID)
	}
	return ledger.Address(owner), nil
}
