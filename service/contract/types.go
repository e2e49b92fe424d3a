package contract

import (
	"fmt"
	"math/big"

	"github.com/deedsync/deedsync/service/ledger"
)

// Logical operation names shared by descriptors and bindings.
const (
	OpGetProperties   = "getProperties"
	OpGetPurchases    = "getPurchases"
	OpBuyProperty     = "buyProperty"
	OpSetAvailability = "setPropertyAvailability"
	OpOwnerOf         = "ownerOf"
)

// PropertyRecord is a raw property listing as returned by the registry
// contract. It carries no owner; ownership is resolved separately through
// the deed ledger, keyed by the record's position in the returned sequence.
type PropertyRecord struct {
	Price     *big.Int
	Location  string
	Size      string
	Available bool
}

// PurchaseRecord is an immutable historical purchase as returned by the
// registry contract.
type PurchaseRecord struct {
	PropertyID uint64
	Buyer      ledger.Address
	Owner      ledger.Address
	Price      *big.Int
}

// wireProperty is the contract's JSON encoding of a property. Prices travel
// as decimal strings because they can exceed 64 bits.
type wireProperty struct {
	Price     string `json:"price"`
	Location  string `json:"location"`
	Size      string `json:"size"`
	Available bool   `json:"available"`
}

// wirePurchase is the contract's JSON encoding of a purchase record.
type wirePurchase struct {
	PropertyID uint64 `json:"pid"`
	Buyer      string `json:"buyer"`
	Owner      string `json:"owner"`
	Price      string `json:"price"`
}

func (w *wireProperty) toDomain() (PropertyRecord, error) {
	price, err := parseAmount(w.Price)
	if err != nil {
		return PropertyRecord{}, fmt.Errorf("property price: %w", err)
	}
	return PropertyRecord{
		Price:     price,
		Location:  w.Location,
		Size:      w.Size,
		Available: w.Available,
	}, nil
}

func (w *wirePurchase) toDomain() (PurchaseRecord, error) {
	price, err := parseAmount(w.Price)
	if err != nil {
		return PurchaseRecord{}, fmt.Errorf("purchase price: %w", err)
	}
	return PurchaseRecord{
		PropertyID: w.PropertyID,
		Buyer:      ledger.Address(w.Buyer),
		Owner:      ledger.Address(w.Owner),
		Price:      price,
	}, nil
}

func parseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}
