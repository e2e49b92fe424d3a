package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/deedsync/deedsync/client"
	"github.com/deedsync/deedsync/service/ledger"
)

// connect builds a connected client from the global flags.
func connect(c *cli.Context) (*client.Client, error) {
	cfg, err := configFromFlags(c)
	if err != nil {
		return nil, err
	}
	logger := newLogger(c.String("log-level"))

	cl, err := client.Connect(c.Context, cfg, client.WithLogger(logger))
	if err != nil {
		return nil, describeConnectError(err)
	}
	return cl, nil
}

// describeConnectError turns the connect error taxonomy into actionable
// messages: the user must know whether to install a provider, authorize an
// account, or just retry.
func describeConnectError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrProviderUnavailable):
		return fmt.Errorf("no wallet provider reachable; install or start a provider daemon and set PROVIDER_RPC_URL (%w)", err)
	case errors.Is(err, ledger.ErrNoAccountAuthorized):
		return fmt.Errorf("provider has no authorized account; authorize one in your wallet and retry (%w)", err)
	case errors.Is(err, ledger.ErrAuthorizationDenied):
		return fmt.Errorf("authorization was denied; retry and approve the prompt (%w)", err)
	default:
		return err
	}
}

func accountCommand() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Show the connected account and its balance",
		Action: func(c *cli.Context) error {
			cl, err := connect(c)
			if err != nil {
				return err
			}

			balance, err := cl.Balance(c.Context)
			if err != nil {
				return fmt.Errorf("failed to fetch balance: %w", err)
			}

			if c.Bool("json") {
				return printJSON(map[string]any{
					"account":            cl.Account(),
					"balance_base_units": balance.String(),
					"balance_coins":      ledger.FormatCoins(balance),
				}, "")
			}

			fmt.Printf("Account: %s\n", cl.Account())
			fmt.Printf("Balance: %s coins (%s base units)\n", ledger.FormatCoins(balance), balance.String())
			return nil
		},
	}
}
