package main

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/state"
)

type snapshotFunc func() (state.Snapshot, state.Status)

func buyCommand() *cli.Command {
	return &cli.Command{
		Name:      "buy",
		Usage:     "Buy a property, attaching value equal to its listed price",
		ArgsUsage: "PROPERTY_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "price",
				Usage: "Price in base units (defaults to the listed price from the snapshot)",
			},
		},
		Action: func(c *cli.Context) error {
			propertyID, err := propertyIDArg(c)
			if err != nil {
				return err
			}

			cl, err := connect(c)
			if err != nil {
				return err
			}

			price, err := resolvePrice(c, cl.Snapshot, propertyID)
			if err != nil {
				return err
			}

			receipt, err := cl.Buy(c.Context, propertyID, price)
			if err != nil {
				var revert *ledger.RevertError
				if errors.As(err, &revert) {
					return fmt.Errorf("the ledger rejected the purchase (your funds did not move): %w", revert)
				}
				return err
			}

			if c.Bool("json") {
				return printJSON(receipt, "")
			}
			fmt.Printf("Purchased property %d for %s coins (tx %s, block %d)\n",
				propertyID, ledger.FormatCoins(price), receipt.TxHash, receipt.BlockNumber)
			return nil
		},
	}
}

func setAvailabilityCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-availability",
		Usage:     "Toggle availability of a property you own",
		ArgsUsage: "PROPERTY_ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "available",
				Usage: "Mark the property available for sale",
			},
		},
		Action: func(c *cli.Context) error {
			propertyID, err := propertyIDArg(c)
			if err != nil {
				return err
			}
			if !c.IsSet("available") {
				return fmt.Errorf("--available=true or --available=false is required")
			}

			cl, err := connect(c)
			if err != nil {
				return err
			}

			receipt, err := cl.SetAvailability(c.Context, propertyID, c.Bool("available"))
			if err != nil {
				var revert *ledger.RevertError
				if errors.As(err, &revert) {
					return fmt.Errorf("the ledger rejected the toggle (are you the owner?): %w", revert)
				}
				return err
			}

			if c.Bool("json") {
				return printJSON(receipt, "")
			}
			fmt.Printf("Property %d availability set to %t (tx %s)\n",
				propertyID, c.Bool("available"), receipt.TxHash)
			return nil
		},
	}
}

func propertyIDArg(c *cli.Context) (uint64, error) {
	if c.NArg() < 1 {
		return 0, fmt.Errorf("property id is required")
	}
	id, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid property id %q: %w", c.Args().Get(0), err)
	}
	return id, nil
}

// resolvePrice uses the explicit --price flag when given, falling back to
// the listed price from the current snapshot.
func resolvePrice(c *cli.Context, snapshot snapshotFunc, propertyID uint64) (*big.Int, error) {
	if raw := c.String("price"); raw != "" {
		price, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("invalid price %q", raw)
		}
		return price, nil
	}

	snap, _ := snapshot()
	for _, p := range snap.Properties {
		if p.ID == propertyID {
			return p.Price, nil
		}
	}
	return nil, fmt.Errorf("property %d not in snapshot; pass --price explicitly", propertyID)
}
