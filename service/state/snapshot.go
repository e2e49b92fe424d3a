package state

import (
	"math/big"

	"github.com/deedsync/deedsync/service/ledger"
)

// Status is the synchronizer lifecycle state.
type Status int

const (
	// Uninitialized means no fetch has been attempted yet.
	Uninitialized Status = iota

	// Loading means a fetch is in flight and nothing has been
	// published yet, or a refresh is in flight over a prior snapshot.
	Loading

	// Ready means the current snapshot is the result of a fully
	// successful fetch.
	Ready

	// Errored means the most recent fetch failed. A previously
	// published snapshot, if any, remains authoritative.
	Errored
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// Property is a registry listing merged with its resolved owner. The ID is
// the property's position in the registry's return order, which is how the
// ledger itself identifies properties.
type Property struct {
	ID        uint64         `json:"id"`
	Price     *big.Int       `json:"price"`
	Location  string         `json:"location"`
	Size      string         `json:"size"`
	Available bool           `json:"available"`
	Owner     ledger.Address `json:"owner"`
}

// Purchase is an immutable historical purchase record.
type Purchase struct {
	PropertyID uint64         `json:"property_id"`
	Buyer      ledger.Address `json:"buyer"`
	Owner      ledger.Address `json:"owner"`
	Price      *big.Int       `json:"price"`
}

// Snapshot is a consistent, wholesale view of registry state. Every owner in
// a snapshot was resolved by the same fetch that produced the listings, so a
// reader never observes a property with a stale or missing owner.
//
// Snapshots handed to consumers are copies; consumers must treat them as
// read-only.
type Snapshot struct {
	Properties []Property
	Purchases  []Purchase
}

// clone returns a copy whose slices are independent of the original.
func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Properties: make([]Property, len(s.Properties)),
		Purchases:  make([]Purchase, len(s.Purchases)),
	}
	copy(out.Properties, s.Properties)
	copy(out.Purchases, s.Purchases)
	return out
}
