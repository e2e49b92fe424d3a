// Package client is the public facade over the deedsync core. A *Client
// only exists after a successful Connect, so holding one is proof that the
// provider handshake happened; "call before connect" is unrepresentable.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/deedsync/deedsync/service/config"
	"github.com/deedsync/deedsync/service/contract"
	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/metrics"
	"github.com/deedsync/deedsync/service/state"
	"github.com/deedsync/deedsync/service/submit"
	"github.com/deedsync/deedsync/service/view"
)

// Client is a connected session against the property registry. It bundles
// the provider, the contract bindings, the synchronizer, and the submitter
// behind one handle constructed at connect time.
type Client struct {
	provider  ledger.Provider
	registry  *contract.Registry
	deeds     *contract.DeedLedger
	syncer    *state.Synchronizer
	submitter *submit.Submitter
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu      sync.RWMutex
	account ledger.Address
}

// Option customizes Connect.
type Option func(*options)

type options struct {
	provider ledger.Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// WithProvider injects a provider instead of dialing the configured RPC
// endpoint. Used by embedders with their own transport and by tests.
func WithProvider(p ledger.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithLogger sets the logger for the client and all components it builds.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics recorder for all components.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Connect establishes the session: it authorizes an account with the
// provider, binds the registry and deed ledger contracts, and runs the
// first full fetch.
//
// An unreachable provider returns ledger.ErrProviderUnavailable; a present
// provider with no authorized account returns ledger.ErrNoAccountAuthorized.
// A failed first fetch does not fail Connect: the snapshot stays empty with
// the synchronizer in the Errored state, and the next Refresh may succeed.
func Connect(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	provider := o.provider
	if provider == nil {
		provider = ledger.NewRPCProvider(cfg.ProviderRPCURL, cfg.RequestTimeout, o.metrics, o.logger)
	}

	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ledger.ErrNoAccountAuthorized
	}
	account := accounts[0]

	registryDesc, err := loadDescriptor(cfg.RegistryDescriptorPath, contract.DefaultRegistryDescriptor)
	if err != nil {
		return nil, err
	}
	deedsDesc, err := loadDescriptor(cfg.DeedLedgerDescriptorPath, contract.DefaultDeedLedgerDescriptor)
	if err != nil {
		return nil, err
	}

	registry := contract.NewRegistry(provider, ledger.Address(cfg.RegistryAddress), registryDesc, o.logger)
	deeds := contract.NewDeedLedger(provider, ledger.Address(cfg.DeedLedgerAddress), deedsDesc, o.logger)
	syncer := state.NewSynchronizer(registry, deeds, o.metrics, o.logger)
	submitter := submit.NewSubmitter(registry, syncer, o.metrics, o.logger)

	c := &Client{
		provider:  provider,
		registry:  registry,
		deeds:     deeds,
		syncer:    syncer,
		submitter: submitter,
		logger:    o.logger,
		metrics:   o.metrics,
		account:   account,
	}

	o.logger.InfoContext(ctx, "connected to provider", "account", account)

	// First fetch. Failure degrades to an empty snapshot in the Errored
	// state rather than failing the whole connect.
	if err := syncer.Refresh(ctx); err != nil {
		o.logger.WarnContext(ctx, "initial fetch failed, starting with empty snapshot",
			"error", err,
		)
	}

	return c, nil
}

func loadDescriptor(path string, fallback func() *contract.Descriptor) (*contract.Descriptor, error) {
	if path == "" {
		return fallback(), nil
	}
	return contract.LoadDescriptor(path)
}

// Account returns the connected account, or the zero address after the
// provider reported a disconnect.
func (c *Client) Account() ledger.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.account
}

// Balance returns the connected account's balance in base units. Scale by
// ledger.CoinUnit for display.
func (c *Client) Balance(ctx context.Context) (*big.Int, error) {
	account := c.Account()
	if account.IsZero() {
		return nil, ledger.ErrNoAccountAuthorized
	}
	return c.provider.Balance(ctx, account)
}

// Refresh triggers a full fetch of registry state.
func (c *Client) Refresh(ctx context.Context) error {
	return c.syncer.Refresh(ctx)
}

// Snapshot returns a copy of the current snapshot and its status.
func (c *Client) Snapshot() (state.Snapshot, state.Status) {
	return c.syncer.Snapshot()
}

// Portfolio partitions the current snapshot by the connected account.
func (c *Client) Portfolio() view.Partition {
	snap, _ := c.syncer.Snapshot()
	return view.Split(snap, c.Account())
}

// Buy purchases a property, attaching value equal to price, then resyncs.
func (c *Client) Buy(ctx context.Context, propertyID uint64, price *big.Int) (*ledger.Receipt, error) {
	return c.submitter.Buy(ctx, c.Account(), propertyID, price)
}

// SetAvailability toggles availability of a property the connected account
// owns, then resyncs. Ownership is enforced by the ledger.
func (c *Client) SetAvailability(ctx context.Context, propertyID uint64, available bool) (*ledger.Receipt, error) {
	return c.submitter.SetAvailability(ctx, c.Account(), propertyID, available)
}

// SubscribeSnapshots registers for snapshot publications. The cancel
// function releases the subscription.
func (c *Client) SubscribeSnapshots() (<-chan state.Snapshot, func()) {
	return c.syncer.Subscribe()
}

// setAccount swaps the current account, returning the previous one.
func (c *Client) setAccount(account ledger.Address) ledger.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.account
	c.account = account
	return prev
}
