package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/deedsync/deedsync/service/ledger"
	"github.com/deedsync/deedsync/service/state"
	"github.com/deedsync/deedsync/service/view"
)

func propertiesCommands() *cli.Command {
	return &cli.Command{
		Name:  "properties",
		Usage: "Property listing commands",
		Subcommands: []*cli.Command{
			propertiesListCommand(),
		},
	}
}

func propertiesListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List properties from the registry",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "mine",
				Usage: "Only properties owned by the connected account",
			},
			&cli.BoolFlag{
				Name:  "for-sale",
				Usage: "Only properties owned by others and flagged available",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "jq query applied to the JSON output",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("mine") && c.Bool("for-sale") {
				return fmt.Errorf("--mine and --for-sale are mutually exclusive")
			}

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

			props := snap.Properties
			partition := view.Split(snap, cl.Account())
			switch {
			case c.Bool("mine"):
				props = partition.Owned
			case c.Bool("for-sale"):
				props = view.ForSale(partition.Others)
			}

			if c.Bool("json") || c.String("query") != "" {
				return printJSON(props, c.String("query"))
			}

			if len(props) == 0 {
				fmt.Println("No properties.")
				return nil
			}
			fmt.Printf("%-4s %-24s %-10s %-12s %-10s %s\n", "ID", "LOCATION", "SIZE", "PRICE", "AVAILABLE", "OWNER")
			for _, p := range props {
				fmt.Printf("%-4d %-24s %-10s %-12s %-10t %s\n",
					p.ID, p.Location, p.Size, ledger.FormatCoins(p.Price), p.Available, p.Owner)
			}
			return nil
		},
	}
}
