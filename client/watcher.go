package client

import (
	"context"
	"time"

	"github.com/deedsync/deedsync/service/ledger"
)

// AccountChange reports a transition of the connected account. Current is
// the zero address when the provider reports no authorized account anymore
// (disconnect).
type AccountChange struct {
	Previous ledger.Address
	Current  ledger.Address
}

// WatchAccounts polls the provider for the authorized account list and
// emits a change event whenever the active account differs from the one the
// client holds, updating the client's account along the way. The channel
// closes when ctx is done.
//
// The provider has no push channel, so polling is the notification
// contract; interval bounds the staleness window.
func (c *Client) WatchAccounts(ctx context.Context, interval time.Duration) <-chan AccountChange {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	out := make(chan AccountChange, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			accounts, err := c.provider.Accounts(ctx)
			if err != nil {
				c.logger.WarnContext(ctx, "account poll failed", "error", err)
				continue
			}

			var current ledger.Address
			if len(accounts) > 0 {
				current = accounts[0]
			}
			if current.Equal(c.Account()) {
				continue
			}

			prev := c.setAccount(current)
			if c.metrics != nil {
				c.metrics.RecordAccountChange()
			}
			c.logger.InfoContext(ctx, "account changed",
				"previous", prev,
				"current", current,
			)

			change := AccountChange{Previous: prev, Current: current}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}

			// A switched account sees the same ledger state, but the view
			// partitions differ; a fresh snapshot keeps consumers honest.
			if !current.IsZero() {
				if err := c.syncer.Refresh(ctx); err != nil {
					c.logger.WarnContext(ctx, "refresh after account change failed", "error", err)
				}
			}
		}
	}()

	return out
}
