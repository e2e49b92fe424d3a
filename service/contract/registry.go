// Package contract provides typed proxies for the two ledger-resident
// contracts this client talks to: the property registry and the deed
// ledger. The proxies split operations into calls (read-only, synchronous)
// and sends (mutating, acknowledged), mirroring the ledger's own model.
//
// Authorization is never validated client-side. A send the ledger rejects
// surfaces as *ledger.RevertError; the ledger is the single source of truth.
package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/deedsync/deedsync/service/ledger"
)

// Backend is the slice of the provider the bindings need. Narrowing the
// dependency to call/send keeps the bindings trivially mockable.
type Backend interface {
	Call(ctx context.Context, req ledger.CallRequest) (json.RawMessage, error)
	Send(ctx context.Context, req ledger.SendRequest) (*ledger.Receipt, error)
}

// Registry is a typed proxy for the property registry contract.
type Registry struct {
	backend Backend
	address ledger.Address
	desc    *Descriptor
	logger  *slog.Logger
}

// NewRegistry binds the registry contract at address through backend.
// If desc is nil, the default registry descriptor is used.
func NewRegistry(backend Backend, address ledger.Address, desc *Descriptor, logger *slog.Logger) *Registry {
	if desc == nil {
		desc = DefaultRegistryDescriptor()
	}
	return &Registry{
		backend: backend,
		address: address,
		desc:    desc,
		logger:  logger,
	}
}

// GetProperties returns the registry's raw property listings in ledger
// order. An empty registry yields an empty slice, not an error.
func (r *Registry) GetProperties(ctx context.Context) ([]PropertyRecord, error) {
	spec, err := r.desc.resolve(OpGetProperties)
	if err != nil {
		return nil, err
	}

	raw, err := r.backend.Call(ctx, ledger.CallRequest{
		To:     r.address,
		Method: spec.Method,
	})
	if err != nil {
		return nil, fmt.Errorf("get properties: %w", err)
	}

	var wire []wireProperty
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}

	records := make([]PropertyRecord, len(wire))
	for i := range wire {
		record, err := wire[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("property %d: %w", i, err)
		}
		records[i] = record
	}

	r.logger.DebugContext(ctx, "fetched property listings", "count", len(records))
	return records, nil
}

// GetPurchases returns the registry's purchase history in ledger order.
func (r *Registry) GetPurchases(ctx context.Context) ([]PurchaseRecord, error) {
	spec, err := r.desc.resolve(OpGetPurchases)
	if err != nil {
		return nil, err
	}

	raw, err := r.backend.Call(ctx, ledger.CallRequest{
		To:     r.address,
		Method: spec.Method,
	})
	if err != nil {
		return nil, fmt.Errorf("get purchases: %w", err)
	}

	var wire []wirePurchase
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}

	records := make([]PurchaseRecord, len(wire))
	for i := range wire {
		record, err := wire[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("purchase %d: %w", i, err)
		}
		records[i] = record
	}

	r.logger.DebugContext(ctx, "fetched purchase history", "count", len(records))
	return records, nil
}

// BuyProperty submits a purchase of the property with the given id. The
// attached value must equal the listed price; the ledger rejects mismatches.
func (r *Registry) BuyProperty(ctx context.Context, buyer ledger.Address, propertyID uint64, price *big.Int) (*ledger.Receipt, error) {
	spec, err := r.desc.resolve(OpBuyProperty)
	if err != nil {
		return nil, err
	}

	receipt, err := r.backend.Send(ctx, ledger.SendRequest{
		From:   buyer,
		To:     r.address,
		Method: spec.Method,
		Args:   []any{propertyID},
		Value:  price,
		Gas:    spec.Gas,
	})
	if err != nil {
		return nil, fmt.Errorf("buy property %d: %w", propertyID, err)
	}
	return receipt, nil
}

// SetPropertyAvailability submits an availability toggle for the property
// with the given id. Only the current owner may do this; the ledger enforces
// it, not the client.
func (r *Registry) SetPropertyAvailability(ctx context.Context, sender ledger.Address, propertyID uint64, available bool) (*ledger.Receipt, error) {
	spec, err := r.desc.resolve(OpSetAvailability)
	if err != nil {
		return nil, err
	}

	receipt, err := r.backend.Send(ctx, ledger.SendRequest{
		From:   sender,
		To:     r.address,
		Method: spec.Method,
		Args:   []any{propertyID, available},
		Gas:    spec.Gas,
	})
	if err != nil {
		return nil, fmt.Errorf("set availability of property %d: %w", propertyID, err)
	}
	return receipt, nil
}
