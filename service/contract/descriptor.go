package contract

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultGasLimit is the fixed gas allowance attached to every send. The
// client never estimates gas; a generous static budget keeps sends simple
// and the ledger refunds the unused remainder.
const DefaultGasLimit = uint64(300_000)

// MethodSpec describes one contract operation: the on-ledger method selector
// and, for sends, the gas allowance to attach.
type MethodSpec struct {
	Method string `json:"method"`
	Gas    uint64 `json:"gas,omitempty"`
}

// Descriptor is the ABI descriptor for one contract: a table mapping logical
// operation names to method specs. Descriptors are static configuration,
// loaded once at startup.
type Descriptor struct {
	Contract string                `json:"contract"`
	Methods  map[string]MethodSpec `json:"methods"`
}

// LoadDescriptor reads a descriptor from a JSON file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", path, err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}
	if len(d.Methods) == 0 {
		return nil, fmt.Errorf("descriptor %s defines no methods", path)
	}
	return &d, nil
}

// resolve returns the method spec for a logical operation, applying the
// default gas limit when the descriptor leaves it unset.
func (d *Descriptor) resolve(operation string) (MethodSpec, error) {
	spec, ok := d.Methods[operation]
	if !ok {
		return MethodSpec{}, fmt.Errorf("descriptor %s has no operation %q", d.Contract, operation)
	}
	if spec.Gas == 0 {
		spec.Gas = DefaultGasLimit
	}
	return spec, nil
}

// DefaultRegistryDescriptor returns the standard registry method table, used
// when no descriptor file is configured.
func DefaultRegistryDescriptor() *Descriptor {
	return &Descriptor{
		Contract: "registry",
		Methods: map[string]MethodSpec{
			OpGetProperties:   {Method: "getProperties"},
			OpGetPurchases:    {Method: "getPurchases"},
			OpBuyProperty:     {Method: "buyProperty", Gas: DefaultGasLimit},
			OpSetAvailability: {Method: "setPropertyAvailability", Gas: DefaultGasLimit},
		},
	}
}

// DefaultDeedLedgerDescriptor returns the standard deed ledger method table.
func DefaultDeedLedgerDescriptor() *Descriptor {
	return &Descriptor{
		Contract: "deed_ledger",
		Methods: map[string]MethodSpec{
			OpOwnerOf: {Method: "ownerOf"},
		},
	}
}
