package contract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deedsync/deedsync/service/ledger"
)

// mockBackend records the last request and returns canned results.
type mockBackend struct {
	callResult json.RawMessage
	callErr    error
	receipt    *ledger.Receipt
	sendErr    error

	lastCall ledger.CallRequest
	lastSend ledger.SendRequest
}

func (m *mockBackend) Call(ctx context.Context, req ledger.CallRequest) (json.RawMessage, error) {
	m.lastCall = req
	if m.callErr != nil {
		return nil, m.callErr
	}
	return m.callResult, nil
}

func (m *mockBackend) Send(ctx context.Context, req ledger.SendRequest) (*ledger.Receipt, error) {
	m.lastSend = req
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return m.receipt, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetProperties_DecodesRecords(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{
		// Prices travel as decimal strings; this one exceeds 64 bits.
		callResult: json.RawMessage(`[
			{"price": "1200000000000000000000", "location": "12 Elm St", "size": "120", "available": true},
			{"price": "500", "location": "48 Oak Ave", "size": "200", "available": false}
		]`),
	}
	registry := NewRegistry(backend, "0xregistry", nil, testLogger())

	records, err := registry.GetProperties(ctx)

	require.NoError(t, err)
	require.Len(t, records, 2)

	want, _ := new(big.Int).SetString("1200000000000000000000", 10)
	assert.Equal(t, want, records[0].Price)
	assert.Equal(t, "12 Elm St", records[0].Location)
	assert.True(t, records[0].Available)
	assert.Equal(t, big.NewInt(500), records[1].Price)
	assert.False(t, records[1].Available)

	assert.Equal(t, ledger.Address("0xregistry"), backend.lastCall.To)
	assert.Equal(t, "getProperties", backend.lastCall.Method)
}

func TestGetProperties_Empty(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{callResult: json.RawMessage(`[]`)}
	registry := NewRegistry(backend, "0xregistry", nil, testLogger())

	records, err := registry.GetProperties(ctx)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetProperties_InvalidPrice(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{
		callResult: json.RawMessage(`[{"price": "not-a-number", "location": "x", "size": "1", "available": true}]`),
	}
	registry := NewRegistry(backend, "0xregistry", nil, testLogger())

	_, err := registry.GetProperties(ctx)

	require.Error(t, err)
}

func TestGetPurchases_DecodesRecords(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{
		callResult: json.RawMessage(`[
			{"pid": 2, "buyer": "0xbob", "owner": "0xalice", "price": "1500"}
		]`),
	}
	registry := NewRegistry(backend, "0xregistry", nil, testLogger())

	records, err := registry.GetPurchases(ctx)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(2), records[0].PropertyID)
	assert.Equal(t, ledger.Address("0xbob"), records[0].Buyer)
	assert.Equal(t, ledger.Address("0xalice"), records[0].Owner)
	assert.Equal(t, big.NewInt(1500), records[0].Price)
}

func TestBuyProperty_SendShape(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{receipt: &ledger.Receipt{TxHash: "0xabc", BlockNumber: 7}}
	registry := NewRegistry(backend, "0xregistry", nil, testLogger())

	receipt, err := registry.BuyProperty(ctx, "0xalice", 4, big.NewInt(500))

	require.NoError(t, err)
	assert.Equal(t, "0xabc", receipt.TxHash)

	assert.Equal(t, ledger.Address("0xalice"), backend.lastSend.From)
	assert.Equal(t, ledger.Address("0xregistry"), backend.lastSend.To)
	assert.Equal(t, "buyProperty", backend.lastSend.Method)
	assert.Equal(t, []any{uint64(4)}, backend.lastSend.Args)
	assert.Equal(t, big.NewInt(500), backend.lastSend.Value)
	assert.Equal(t, DefaultGasLimit, backend.lastSend.Gas)
}

func TestBuyProperty_RevertPropagates(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{sendErr: &ledger.RevertError{Reason: "already sold"}}
	registry := NewRegistry(backend, "0xregistry", nil, testLogger())

	_, err := registry.BuyProperty(ctx, "0xalice", 2, big.NewInt(500))

	var revert *ledger.RevertError
	require.ErrorAs(t, err, &revert)
	assert.Equal(t, "already sold", revert.Reason)
}

func TestSetPropertyAvailability_SendShape(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{receipt: &ledger.Receipt{TxHash: "0xdef"}}
	registry := NewRegistry(backend, "0xregistry", nil, testLogger())

	_, err := registry.SetPropertyAvailability(ctx, "0xalice", 1, false)

	require.NoError(t, err)
	assert.Equal(t, "setPropertyAvailability", backend.lastSend.Method)
	assert.Equal(t, []any{uint64(1), false}, backend.lastSend.Args)
	assert.Nil(t, backend.lastSend.Value, "availability toggles carry no value")
}

func TestOwnerOf(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{callResult: json.RawMessage(`"0xalice"`)}
	deeds := NewDeedLedger(backend, "0xdeeds", nil, testLogger())

	owner, err := deeds.OwnerOf(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, ledger.Address("0xalice"), owner)
	assert.Equal(t, ledger.Address("0xdeeds"), backend.lastCall.To)
	assert.Equal(t, "ownerOf", backend.lastCall.Method)
	assert.Equal(t, []any{uint64(3)}, backend.lastCall.Args)
}

func TestOwnerOf_EmptyOwnerIsError(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{callResult: json.RawMessage(`""`)}
	deeds := NewDeedLedger(backend, "0xdeeds", nil, testLogger())

	_, err := deeds.OwnerOf(ctx, 0)

	require.Error(t, err, "every property must have exactly one owner")
}

func TestOwnerOf_BackendError(t *testing.T) {
	ctx := context.Background()

	backend := &mockBackend{callErr: errors.New("rpc down")}
	deeds := NewDeedLedger(backend, "0xdeeds", nil, testLogger())

	_, err := deeds.OwnerOf(ctx, 0)

	require.Error(t, err)
}
