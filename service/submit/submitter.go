// Package submit issues state-changing registry operations and chains a
// resynchronization after each acknowledgment. It never mutates the
// snapshot optimistically: the view reflects stale state until the resync
// lands, which keeps a failed transaction from ever corrupting local state.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/metrics"
	"github.com/deedsync/deedsync/service/state"
)

// ErrAlreadyOwned is the advisory pre-check failure for buying a property
// the account already owns per the last snapshot. The ledger remains
// authoritative; this only saves a doomed send.
var ErrAlreadyOwned = errors.New("property already owned by this account")

// RegistryWriter is the mutating slice of the registry binding.
type RegistryWriter interface {
	BuyProperty(ctx context.Context, buyer ledger.Address, propertyID uint64, price *big.Int) (*ledger.Receipt, error)
	SetPropertyAvailability(ctx context.Context, sender ledger.Address, propertyID uint64, available bool) (*ledger.Receipt, error)
}

// Resyncer triggers a snapshot refresh and exposes the last snapshot for
// advisory pre-checks.
type Resyncer interface {
	Refresh(ctx context.Context) error
	Snapshot() (state.Snapshot, state.Status)
}

// Submitter issues mutating registry operations for one connected account.
type Submitter struct {
	registry RegistryWriter
	syncer   Resyncer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewSubmitter creates a Submitter. If m is nil, no metrics are recorded.
func NewSubmitter(registry RegistryWriter, syncer Resyncer, m *metrics.Metrics, logger *slog.Logger) *Submitter {
	return &Submitter{
		registry: registry,
		syncer:   syncer,
		logger:   logger,
		metrics:  m,
	}
}

// Buy purchases a property, attaching value equal to price. On
// acknowledgment it triggers a full resync so the snapshot catches up with
// the ownership change.
//
// A revert (wrong price, already sold, and so on) is returned to the caller
// as *ledger.RevertError and triggers no resync. A resync failure after a
// successful send is not an error of the purchase itself: it is logged and
// left to the synchronizer's state, so the caller can always tell whether
// their money moved.
func (s *Submitter) Buy(ctx context.Context, account ledger.Address, propertyID uint64, price *big.Int) (*ledger.Receipt, error) {
	if account.IsZero() {
		return nil, ledger.ErrNoAccountAuthorized
	}
	if err := s.precheckBuy(account, propertyID); err != nil {
		return nil, err
	}

	receipt, err := s.registry.BuyProperty(ctx, account, propertyID, price)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSubmission("buy", "error")
		}
		s.logger.ErrorContext(ctx, "buy rejected",
			"property_id", propertyID,
			"account", account,
			"error", err,
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSubmission("buy", "success")
	}
	s.logger.InfoContext(ctx, "property purchased",
		"property_id", propertyID,
		"account", account,
		"tx_hash", receipt.TxHash,
	)

	s.resync(ctx)
	return receipt, nil
}

// SetAvailability toggles a property's availability flag. The ledger
// enforces that the sender owns the property; the client does not.
func (s *Submitter) SetAvailability(ctx context.Context, account ledger.Address, propertyID uint64, available bool) (*ledger.Receipt, error) {
	if account.IsZero() {
		return nil, ledger.ErrNoAccountAuthorized
	}

	receipt, err := s.registry.SetPropertyAvailability(ctx, account, propertyID, available)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSubmission("set_availability", "error")
		}
		s.logger.ErrorContext(ctx, "availability toggle rejected",
			"property_id", propertyID,
			"account", account,
			"error", err,
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSubmission("set_availability", "success")
	}
	s.logger.InfoContext(ctx, "property availability updated",
		"property_id", propertyID,
		"available", available,
		"tx_hash", receipt.TxHash,
	)

	s.resync(ctx)
	return receipt, nil
}

// precheckBuy is advisory only: it consults the last snapshot to avoid an
// obviously doomed send. The ledger may still reject for reasons the
// snapshot cannot see (price change, concurrent sale).
func (s *Submitter) precheckBuy(account ledger.Address, propertyID uint64) error {
	snap, status := s.syncer.Snapshot()
	if status != state.Ready {
		return nil
	}
	for _, prop := range snap.Properties {
		if prop.ID == propertyID && prop.Owner.Equal(account) {
			return fmt.Errorf("%w: property %d", ErrAlreadyOwned, propertyID)
		}
	}
	return nil
}

// resync chases an acknowledged send with a full fetch. Failures degrade to
// last-known-good state rather than failing the submission.
func (s *Submitter) resync(ctx context.Context) {
	if err := s.syncer.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "resync after transaction failed, snapshot is stale",
			"error", err,
		)
	}
}
