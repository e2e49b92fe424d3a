package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/deedsync/deedsync/client"
	"github.com/deedsync/deedsync/service/metrics"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream snapshot publications and account changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Refresh and account poll interval",
				Value: 10 * time.Second,
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Expose Prometheus metrics on this address (empty disables)",
				EnvVars: []string{"METRICS_ADDR"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := configFromFlags(c)
			if err != nil {
				return err
			}
			logger := newLogger(c.String("log-level"))
			metricsCollector := metrics.NewMetrics(nil) // nil uses default registry

			if addr := c.String("metrics-addr"); addr != "" {
				metricsServer := &http.Server{
					Addr:    addr,
					Handler: promhttp.Handler(),
				}
				go func() {
					logger.Info("starting metrics HTTP server", "addr", addr)
					if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("metrics server error", "error", err)
					}
				}()
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := metricsServer.Shutdown(shutdownCtx); err != nil {
						logger.Error("failed to shutdown metrics server", "error", err)
					}
				}()
			}

			cl, err := client.Connect(c.Context, cfg,
				client.WithLogger(logger),
				client.WithMetrics(metricsCollector),
			)
			if err != nil {
				return describeConnectError(err)
			}

			interval := c.Duration("interval")
			snapshots, cancel := cl.SubscribeSnapshots()
			defer cancel()
			accounts := cl.WatchAccounts(c.Context, interval)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			fmt.Println("Watching registry state. Ctrl-C to stop.")
			for {
				select {
				case <-c.Context.Done():
					return nil
				case <-ticker.C:
					if err := cl.Refresh(c.Context); err != nil {
						fmt.Printf("refresh failed, keeping last snapshot: %v\n", err)
					}
				case snap := <-snapshots:
					if c.Bool("json") {
						if err := printJSON(snap.Properties, ""); err != nil {
							return err
						}
						continue
					}
					fmt.Printf("snapshot: %d properties, %d purchases\n",
						len(snap.Properties), len(snap.Purchases))
				case change, ok := <-accounts:
					if !ok {
						return nil
					}
					if change.Current.IsZero() {
						fmt.Printf("account disconnected (was %s)\n", change.Previous)
						continue
					}
					fmt.Printf("account changed: %s -> %s\n", change.Previous, change.Current)
				}
			}
		},
	}
}
