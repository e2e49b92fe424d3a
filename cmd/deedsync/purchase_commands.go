package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/state"
)

func purchasesCommands() *cli.Command {
	return &cli.Command{
		Name:  "purchases",
		Usage: "Purchase history commands",
		Subcommands: []*cli.Command{
			purchasesListCommand(),
		},
	}
}

func purchasesListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the registry's purchase history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "jq query applied to the JSON output",
			},
		},
		Action: func(c *cli.Context) error {
			cl, err := connect(c)
			if err != nil {
				return err
			}

			snap, status := cl.Snapshot()
			if status != state.Ready {
				if err := cl.Refresh(c.Context); err != nil {
					return fmt.Errorf("registry state unavailable: %w", err)
				}
				snap, _ = cl.Snapshot()
			}

			if c.Bool("json") || c.String("query") != "" {
				return printJSON(snap.Purchases, c.String("query"))
			}

			if len(snap.Purchases) == 0 {
				fmt.Println("No purchases.")
				return nil
			}
			fmt.Printf("%-4s %-44s %-44s %s\n", "PID", "BUYER", "PREVIOUS OWNER", "PRICE")
			for _, p := range snap.Purchases {
				fmt.Printf("%-4d %-44s %-44s %s\n",
					p.PropertyID, p.Buyer, p.Owner, ledger.FormatCoins(p.Price))
			}
			return nil
		},
	}
}
