// Command portalctl is the Vantage portal admin CLI.
//
// Usage:
//
//	portalctl enrich --player 12
//	portalctl chart --player 12 --metric xg
//	portalctl invoices sweep
//	portalctl scouting submit --draft 7
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vantagemgmt/portal-data/internal/chart"
	"github.com/vantagemgmt/portal-data/internal/config"
	"github.com/vantagemgmt/portal-data/internal/db"
	"github.com/vantagemgmt/portal-data/internal/enrich"
	"github.com/vantagemgmt/portal-data/internal/metric"
	"github.com/vantagemgmt/portal-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "portalctl",
		Short: "Vantage portal admin CLI",
	}

	root.AddCommand(enrichCmd())
	root.AddCommand(chartCmd())
	root.AddCommand(invoicesCmd())
	root.AddCommand(scoutingCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// enrich command
// --------------------------------------------------------------------------

func enrichCmd() *cobra.Command {
	var playerID int64
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Derive and print chain metrics for a player's analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerID == 0 {
				return fmt.Errorf("--player is required")
			}
			return run(func(ctx context.Context, st *store.Store) error {
				analyses, err := st.AnalysesByPlayer(ctx, playerID)
				if err != nil {
					return err
				}
				start := time.Now()
				enriched := enrich.Analyses(ctx, st, analyses, logger)
				logger.Info("Enrichment finished",
					"player_id", playerID, "analyses", len(enriched),
					"duration", time.Since(start).Round(time.Millisecond))

				for i := range enriched {
					a := &enriched[i]
					chain, hasChain := a.Stat(metric.StatXGChainTotal)
					per90, _ := a.Stat(metric.StatXGChain)
					if !hasChain {
						fmt.Printf("%s  vs %-20s  (no chain data)\n",
							a.MatchDate.Format("2006-01-02"), a.Opponent)
						continue
					}
					fmt.Printf("%s  vs %-20s  xgChain=%.2f  per90=%.2f\n",
						a.MatchDate.Format("2006-01-02"), a.Opponent, chain, per90)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&playerID, "player", 0, "Player ID")
	return cmd
}

// --------------------------------------------------------------------------
// chart command
// --------------------------------------------------------------------------

func chartCmd() *cobra.Command {
	var playerID int64
	var metricKey string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print chart JSON for a player and metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerID == 0 {
				return fmt.Errorf("--player is required")
			}
			return run(func(ctx context.Context, st *store.Store) error {
				analyses, err := st.AnalysesByPlayer(ctx, playerID)
				if err != nil {
					return err
				}
				enriched := enrich.Analyses(ctx, st, analyses, logger)

				resolved := metric.FirstWithData(enriched, metric.Key(metricKey))
				if resolved != metric.Key(metricKey) {
					logger.Info("Metric auto-switched", "requested", metricKey, "resolved", resolved)
				}
				data, ok := chart.Build(enriched, resolved)
				if !ok {
					return fmt.Errorf("unknown metric %q", metricKey)
				}
				out, err := json.MarshalIndent(data, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&playerID, "player", 0, "Player ID")
	cmd.Flags().StringVar(&metricKey, "metric", "r90", "Metric key (r90, xg, xa, ...)")
	return cmd
}

// --------------------------------------------------------------------------
// invoices command
// --------------------------------------------------------------------------

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Invoice administration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Mark pending invoices past their due date as overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, st *store.Store) error {
				n, err := st.MarkInvoicesOverdue(ctx)
				if err != nil {
					return err
				}
				logger.Info("Invoice sweep finished", "marked_overdue", n)
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// scouting command
// --------------------------------------------------------------------------

func scoutingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scouting",
		Short: "Scouting report administration",
	}
	cmd.AddCommand(scoutingSubmitCmd())
	return cmd
}

func scoutingSubmitCmd() *cobra.Command {
	var draftID int64
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a scouting draft as a final report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if draftID == 0 {
				return fmt.Errorf("--draft is required")
			}
			return run(func(ctx context.Context, st *store.Store) error {
				reportID, err := st.SubmitScoutingDraft(ctx, draftID)
				if err != nil {
					return err
				}
				logger.Info("Scouting draft submitted",
					"draft_id", draftID, "report_id", reportID)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&draftID, "draft", 0, "Draft ID to submit")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, DB connection, and context cancellation.
func run(fn func(ctx context.Context, st *store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, store.New(pool))
}
