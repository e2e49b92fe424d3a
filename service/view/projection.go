// Package view derives display partitions from a snapshot. Everything here
// is a pure function of its inputs; there is no hidden state, so a caller
// recomputes on every snapshot or account change.
package view

import (
	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/state"
)

// Partition splits a snapshot's properties into the two disjoint sets a
// consumer renders: those owned by the account and everything else. The two
// sets together always cover the whole snapshot.
type Partition struct {
	Owned  []state.Property
	Others []state.Property
}

// Split partitions the snapshot's properties by ownership. An unset account
// owns nothing, so everything lands in Others.
func Split(snap state.Snapshot, account ledger.Address) Partition {
	p := Partition{
		Owned:  []state.Property{},
		Others: []state.Property{},
	}
	for _, prop := range snap.Properties {
		if !account.IsZero() && prop.Owner.Equal(account) {
			p.Owned = append(p.Owned, prop)
		} else {
			p.Others = append(p.Others, prop)
		}
	}
	return p
}

// ForSale filters properties by their availability flag. Applied to a
// partition's Others set before surfacing a buy action.
func ForSale(props []state.Property) []state.Property {
	out := []state.Property{}
	for _, prop := range props {
		if prop.Available {
			out = append(out, prop)
		}
	}
	return out
}
