package view

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/state"
)

func snapshotWithOwners(owners ...ledger.Address) state.Snapshot {
	snap := state.Snapshot{}
	for i, owner := range owners {
		snap.Properties = append(snap.Properties, state.Property{
			ID:        uint64(i),
			Price:     big.NewInt(int64(1000 * (i + 1))),
			Location:  "somewhere",
			Size:      "100",
			Available: i%2 == 0,
			Owner:     owner,
		})
	}
	return snap
}

func TestSplit_OwnedAndOthers(t *testing.T) {
	// Three properties owned A, B, A; connected account A.
	snap := snapshotWithOwners("0xA", "0xB", "0xA")

	p := Split(snap, "0xA")

	require.Len(t, p.Owned, 2)
	require.Len(t, p.Others, 1)
	assert.Equal(t, uint64(0), p.Owned[0].ID)
	assert.Equal(t, uint64(2), p.Owned[1].ID)
	assert.Equal(t, uint64(1), p.Others[0].ID)
}

func TestSplit_EmptyAccountOwnsNothing(t *testing.T) {
	snap := snapshotWithOwners("0xA", "0xB", "0xA")

	p := Split(snap, "")

	assert.Empty(t, p.Owned)
	assert.Len(t, p.Others, 3)
}

func TestSplit_PartitionIsDisjointAndExhaustive(t *testing.T) {
	snap := snapshotWithOwners("0xA", "0xB", "0xC", "0xA", "0xB", "0xA")

	for _, account := range []ledger.Address{"0xA", "0xB", "0xC", "0xD", ""} {
		p := Split(snap, account)

		assert.Equal(t, len(snap.Properties), len(p.Owned)+len(p.Others),
			"partitions must cover the whole snapshot for account %q", account)

		seen := map[uint64]bool{}
		for _, prop := range p.Owned {
			seen[prop.ID] = true
		}
		for _, prop := range p.Others {
			assert.False(t, seen[prop.ID],
				"property %d in both partitions for account %q", prop.ID, account)
		}
	}
}

func TestSplit_OwnerComparisonIgnoresCase(t *testing.T) {
	snap := snapshotWithOwners("0xAbC1")

	p := Split(snap, "0xabc1")

	assert.Len(t, p.Owned, 1)
	assert.Empty(t, p.Others)
}

func TestSplit_EmptySnapshot(t *testing.T) {
	p := Split(state.Snapshot{}, "0xA")

	assert.Empty(t, p.Owned)
	assert.Empty(t, p.Others)
}

func TestForSale_FiltersByAvailability(t *testing.T) {
	// Even-indexed properties are available in the fixture.
	snap := snapshotWithOwners("0xA", "0xB", "0xC", "0xD")

	forSale := ForSale(snap.Properties)

	require.Len(t, forSale, 2)
	assert.Equal(t, uint64(0), forSale[0].ID)
	assert.Equal(t, uint64(2), forSale[1].ID)
}
