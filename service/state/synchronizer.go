// Package state reconciles registry and deed ledger state into a consistent
// local snapshot. A fetch either fully succeeds and replaces the snapshot
// wholesale, or fails and leaves the prior snapshot untouched.
package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deedsync/deedsync/service/contract"
	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/metrics"
)

// RegistryReader is the read-only slice of the registry binding the
// synchronizer needs.
type RegistryReader interface {
	GetProperties(ctx context.Context) ([]contract.PropertyRecord, error)
	GetPurchases(ctx context.Context) ([]contract.PurchaseRecord, error)
}

// OwnerResolver resolves per-property ownership.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, propertyID uint64) (ledger.Address, error)
}

// Synchronizer owns the snapshot. Consumers read copies through Snapshot()
// or receive them through Subscribe(); nothing else may touch it.
type Synchronizer struct {
	registry RegistryReader
	deeds    OwnerResolver
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu           sync.Mutex
	status       Status
	snapshot     *Snapshot
	lastErr      error
	nextSeq      uint64 // sequence assigned to the next fetch at issue time
	publishedSeq uint64 // highest sequence that has published
	subs         map[uint64]chan Snapshot
	nextSubID    uint64
}

// NewSynchronizer creates a synchronizer in the Uninitialized state.
// If m is nil, no metrics are recorded.
func NewSynchronizer(registry RegistryReader, deeds OwnerResolver, m *metrics.Metrics, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		registry: registry,
		deeds:    deeds,
		logger:   logger,
		metrics:  m,
		status:   Uninitialized,
		subs:     make(map[uint64]chan Snapshot),
	}
}

// Refresh performs a full fetch and, on success, publishes a new snapshot.
//
// Listings and purchase history are fetched concurrently, then one ownership
// lookup per property runs concurrently behind a barrier: nothing publishes
// until every lookup has succeeded. If any piece fails the whole fetch
// fails and the prior snapshot, if any, remains authoritative.
//
// Each fetch is tagged with a sequence number at issue time. A completing
// fetch publishes only if no higher-sequence fetch has published before it;
// stale completions are discarded so a slow old fetch can never overwrite a
// newer snapshot.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	if s.status == Uninitialized {
		s.status = Loading
	}
	s.mu.Unlock()

	start := time.Now()

	var (
		records   []contract.PropertyRecord
		purchases []contract.PurchaseRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.registry.GetProperties(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		purchases, err = s.registry.GetPurchases(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(ctx, seq, start, err)
	}

	// The property's position in the registry's return order is its
	// identifier; the deed ledger is keyed the same way.
	owners := make([]ledger.Address, len(records))
	og, ogctx := errgroup.WithContext(ctx)
	for i := range records {
		i := i
		og.Go(func() error {
			owner, err := s.deeds.OwnerOf(ogctx, uint64(i))
			if err != nil {
				return err
			}
			owners[i] = owner
			return nil
		})
	}
	if err := og.Wait(); err != nil {
		return s.fail(ctx, seq, start, err)
	}

	snap := Snapshot{
		Properties: make([]Property, len(records)),
		Purchases:  make([]Purchase, len(purchases)),
	}
	for i, record := range records {
		snap.Properties[i] = Property{
			ID:        uint64(i),
			Price:     record.Price,
			Location:  record.Location,
			Size:      record.Size,
			Available: record.Available,
			Owner:     owners[i],
		}
	}
	for i, record := range purchases {
		snap.Purchases[i] = Purchase{
			PropertyID: record.PropertyID,
			Buyer:      record.Buyer,
			Owner:      record.Owner,
			Price:      record.Price,
		}
	}

	s.publish(ctx, seq, start, snap)
	return nil
}

// fail records a fetch failure without disturbing the published snapshot.
func (s *Synchronizer) fail(ctx context.Context, seq uint64, start time.Time, err error) error {
	s.mu.Lock()
	s.lastErr = err
	// A failure only moves the state machine if nothing newer published
	// while this fetch was in flight.
	if s.publishedSeq < seq {
		s.status = Errored
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordFetch("error", time.Since(start).Seconds())
	}
	s.logger.ErrorContext(ctx, "registry fetch failed",
		"sequence", seq,
		"error", err,
	)
	return err
}

// publish replaces the snapshot in one atomic handoff, unless a newer fetch
// already published.
func (s *Synchronizer) publish(ctx context.Context, seq uint64, start time.Time, snap Snapshot) {
	s.mu.Lock()
	if seq <= s.publishedSeq {
		published := s.publishedSeq
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordStaleFetchDiscarded()
			s.metrics.RecordFetch("stale", time.Since(start).Seconds())
		}
		s.logger.DebugContext(ctx, "discarding stale fetch completion",
			"sequence", seq,
			"published_sequence", published,
		)
		return
	}
	s.snapshot = &snap
	s.status = Ready
	s.lastErr = nil
	s.publishedSeq = seq
	subs := make([]chan Snapshot, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordFetch("success", time.Since(start).Seconds())
		s.metrics.RecordSnapshotPublished(len(snap.Properties))
	}
	s.logger.InfoContext(ctx, "published snapshot",
		"sequence", seq,
		"properties", len(snap.Properties),
		"purchases", len(snap.Purchases),
	)

	// Notify subscribers without blocking the synchronizer. A subscriber
	// that has not drained its previous snapshot just misses this one and
	// catches up on the next publish.
	for _, ch := range subs {
		select {
		case ch <- snap.clone():
		default:
		}
	}
}

// Snapshot returns a copy of the current snapshot and the synchronizer
// state. Before the first successful fetch the snapshot is empty.
func (s *Synchronizer) Snapshot() (Snapshot, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return Snapshot{}, s.status
	}
	return s.snapshot.clone(), s.status
}

// LastError returns the error from the most recent failed fetch, or nil if
// the last fetch succeeded.
func (s *Synchronizer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers for snapshot publications. The returned cancel
// function must be called to release the subscription.
func (s *Synchronizer) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}
