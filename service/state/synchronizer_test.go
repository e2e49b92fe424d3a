package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deedsync/deedsync/service/contract"
	"github.com/deedsync/deedsync/service/ledger"
)

// mockRegistry implements RegistryReader for testing. It's behavior-focused:
// we set what it should return, not verify call sequences.
type mockRegistry struct {
	properties   []contract.PropertyRecord
	purchases    []contract.PurchaseRecord
	propertiesFn func(ctx context.Context) ([]contract.PropertyRecord, error)
	err          error
}

func (m *mockRegistry) GetProperties(ctx context.Context) ([]contract.PropertyRecord, error) {
	if m.propertiesFn != nil {
		return m.propertiesFn(ctx)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.properties, nil
}

func (m *mockRegistry) GetPurchases(ctx context.Context) ([]contract.PurchaseRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.purchases, nil
}

// mockDeeds implements OwnerResolver for testing.
type mockDeeds struct {
	owners  map[uint64]ledger.Address
	errFor  map[uint64]error
	ownerFn func(ctx context.Context, id uint64) (ledger.Address, error)
}

func (m *mockDeeds) OwnerOf(ctx context.Context, id uint64) (ledger.Address, error) {
	if m.ownerFn != nil {
		return m.ownerFn(ctx, id)
	}
	if err, ok := m.errFor[id]; ok {
		return "", err
	}
	owner, ok := m.owners[id]
	if !ok {
		return "", errors.New("unknown property")
	}
	return owner, nil
}

func newTestSynchronizer(registry *mockRegistry, deeds *mockDeeds) *Synchronizer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSynchronizer(registry, deeds, nil, logger)
}

func threeProperties() []contract.PropertyRecord {
	return []contract.PropertyRecord{
		{Price: big.NewInt(1000), Location: "12 Elm St", Size: "120", Available: true},
		{Price: big.NewInt(2000), Location: "48 Oak Ave", Size: "200", Available: false},
		{Price: big.NewInt(1500), Location: "7 Pine Rd", Size: "90", Available: true},
	}
}

func TestRefresh_PublishesSnapshot(t *testing.T) {
	ctx := context.Background()

	registry := &mockRegistry{
		properties: threeProperties(),
		purchases: []contract.PurchaseRecord{
			{PropertyID: 1, Buyer: "0xbob", Owner: "0xcarol", Price: big.NewInt(2000)},
		},
	}
	deeds := &mockDeeds{owners: map[uint64]ledger.Address{
		0: "0xalice",
		1: "0xbob",
		2: "0xalice",
	}}
	s := newTestSynchronizer(registry, deeds)

	// Act
	err := s.Refresh(ctx)

	// Assert
	require.NoError(t, err)
	snap, status := s.Snapshot()
	assert.Equal(t, Ready, status)
	require.Len(t, snap.Properties, 3)

	// Identifier is the position in the registry's return order.
	assert.Equal(t, uint64(0), snap.Properties[0].ID)
	assert.Equal(t, uint64(2), snap.Properties[2].ID)
	assert.Equal(t, ledger.Address("0xalice"), snap.Properties[0].Owner)
	assert.Equal(t, ledger.Address("0xbob"), snap.Properties[1].Owner)
	assert.Equal(t, "12 Elm St", snap.Properties[0].Location)
	assert.Equal(t, big.NewInt(2000), snap.Properties[1].Price)

	require.Len(t, snap.Purchases, 1)
	assert.Equal(t, uint64(1), snap.Purchases[0].PropertyID)
	assert.Equal(t, ledger.Address("0xbob"), snap.Purchases[0].Buyer)
}

func TestRefresh_EmptyRegistry(t *testing.T) {
	ctx := context.Background()

	s := newTestSynchronizer(&mockRegistry{}, &mockDeeds{})

	err := s.Refresh(ctx)

	require.NoError(t, err)
	snap, status := s.Snapshot()
	assert.Equal(t, Ready, status)
	assert.Empty(t, snap.Properties)
	assert.Empty(t, snap.Purchases)
}

func TestRefresh_BeforeFirstFetch(t *testing.T) {
	s := newTestSynchronizer(&mockRegistry{}, &mockDeeds{})

	snap, status := s.Snapshot()

	assert.Equal(t, Uninitialized, status)
	assert.Empty(t, snap.Properties)
}

func TestRefresh_PropertiesErrorKeepsPriorSnapshot(t *testing.T) {
	ctx := context.Background()

	registry := &mockRegistry{properties: threeProperties()}
	deeds := &mockDeeds{owners: map[uint64]ledger.Address{
		0: "0xalice", 1: "0xbob", 2: "0xalice",
	}}
	s := newTestSynchronizer(registry, deeds)
	require.NoError(t, s.Refresh(ctx))
	first, _ := s.Snapshot()

	// Second fetch fails at the listing stage.
	registry.err = errors.New("rpc timeout")
	err := s.Refresh(ctx)

	require.Error(t, err)
	snap, status := s.Snapshot()
	assert.Equal(t, Errored, status)
	assert.Equal(t, first.Properties, snap.Properties, "prior snapshot must remain authoritative")
	assert.Error(t, s.LastError())
}

func TestRefresh_SingleOwnerLookupFailureDiscardsWholeFetch(t *testing.T) {
	ctx := context.Background()

	registry := &mockRegistry{properties: threeProperties()}
	deeds := &mockDeeds{
		owners: map[uint64]ledger.Address{0: "0xalice", 1: "0xbob", 2: "0xalice"},
	}
	s := newTestSynchronizer(registry, deeds)
	require.NoError(t, s.Refresh(ctx))
	first, _ := s.Snapshot()

	// One of three concurrent ownership lookups fails; partial results
	// must be discarded atomically.
	deeds.errFor = map[uint64]error{1: errors.New("lookup failed")}
	err := s.Refresh(ctx)

	require.Error(t, err)
	snap, status := s.Snapshot()
	assert.Equal(t, Errored, status)
	assert.Equal(t, first.Properties, snap.Properties)
}

func TestRefresh_NoCrossFetchOwnershipLeak(t *testing.T) {
	ctx := context.Background()

	registry := &mockRegistry{properties: threeProperties()}
	deeds := &mockDeeds{owners: map[uint64]ledger.Address{
		0: "0xalice", 1: "0xbob", 2: "0xalice",
	}}
	s := newTestSynchronizer(registry, deeds)
	require.NoError(t, s.Refresh(ctx))

	// Ownership changes on the ledger between fetches. Every owner in the
	// new snapshot must come from the new fetch.
	deeds.owners = map[uint64]ledger.Address{
		0: "0xdave", 1: "0xdave", 2: "0xdave",
	}
	require.NoError(t, s.Refresh(ctx))

	snap, _ := s.Snapshot()
	for _, prop := range snap.Properties {
		assert.Equal(t, ledger.Address("0xdave"), prop.Owner)
	}
}

func TestRefresh_StaleCompletionDiscarded(t *testing.T) {
	ctx := context.Background()

	registry := &mockRegistry{
		properties: []contract.PropertyRecord{
			{Price: big.NewInt(1000), Location: "12 Elm St", Size: "120", Available: true},
		},
	}

	// The first fetch's ownership lookup blocks until released; the second
	// fetch completes immediately. The slow first fetch must not overwrite
	// the newer snapshot when it finally lands.
	release := make(chan struct{})
	var calls atomic.Int32
	deeds := &mockDeeds{
		ownerFn: func(ctx context.Context, id uint64) (ledger.Address, error) {
			if calls.Add(1) == 1 {
				<-release
				return "0xstale", nil
			}
			return "0xfresh", nil
		},
	}
	s := newTestSynchronizer(registry, deeds)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()

	// Wait for the slow fetch to reach its lookup, then run a fast fetch.
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	require.NoError(t, s.Refresh(ctx))

	close(release)
	require.NoError(t, <-done)

	snap, status := s.Snapshot()
	assert.Equal(t, Ready, status)
	require.Len(t, snap.Properties, 1)
	assert.Equal(t, ledger.Address("0xfresh"), snap.Properties[0].Owner,
		"stale completion must not overwrite the newer snapshot")
}

func TestSubscribe_NotifiedOnPublish(t *testing.T) {
	ctx := context.Background()

	registry := &mockRegistry{properties: threeProperties()}
	deeds := &mockDeeds{owners: map[uint64]ledger.Address{
		0: "0xalice", 1: "0xbob", 2: "0xalice",
	}}
	s := newTestSynchronizer(registry, deeds)

	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Refresh(ctx))

	select {
	case snap := <-ch:
		assert.Len(t, snap.Properties, 3)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot notification")
	}
}

func TestSnapshot_ReturnsIsolatedCopy(t *testing.T) {
	ctx := context.Background()

	registry := &mockRegistry{properties: threeProperties()}
	deeds := &mockDeeds{owners: map[uint64]ledger.Address{
		0: "0xalice", 1: "0xbob", 2: "0xalice",
	}}
	s := newTestSynchronizer(registry, deeds)
	require.NoError(t, s.Refresh(ctx))

	snap, _ := s.Snapshot()
	snap.Properties[0].Owner = "0xmallory"

	again, _ := s.Snapshot()
	assert.Equal(t, ledger.Address("0xalice"), again.Properties[0].Owner,
		"consumers must not be able to mutate the synchronizer's snapshot")
}
