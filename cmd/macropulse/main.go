// macropulse — daily macro & market indicator collector
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/macropulse/internal/config"
	"github.com/seenimoa/macropulse/internal/engine"
	"github.com/seenimoa/macropulse/internal/provider"
	"github.com/seenimoa/macropulse/internal/providers"
	"github.com/seenimoa/macropulse/internal/registry"
	"github.com/seenimoa/macropulse/internal/resolve"
	"github.com/seenimoa/macropulse/internal/store"
	"github.com/seenimoa/macropulse/pkg/models"
	"github.com/seenimoa/macropulse/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command before any subcommand runs.
var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "macropulse",
	Short: "macropulse — daily macro & market indicator collector",
	Long: `macropulse pulls a fixed catalog of economic indicators (money supply,
Fed balance sheet, reverse repo, credit spreads, CPI inflation, the
10-year yield, VIX, Nasdaq-100, Bitcoin, gold) from FRED and Yahoo
Finance, merges each day's values into one YAML series, and keeps five
years of history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log = newLogger(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
}

// newLogger builds the process logger from config. Text format gets the
// human console writer; anything else emits JSON lines.
func newLogger(lc config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if lc.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// buildEngine wires the indicator registry, source adapters, store, and
// resolver into a runnable engine.
func buildEngine() (*engine.Engine, *registry.Registry, error) {
	reg, err := registry.New(cfg.IndicatorSpecs())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid indicator configuration: %w", err)
	}

	adapters := provider.NewRegistry()
	if err := providers.RegisterAll(adapters, cfg); err != nil {
		return nil, nil, err
	}

	st := store.New(cfg.Data.File, reg.IDs(), log)
	resolver := resolve.New(adapters, log)
	eng := engine.New(reg, resolver, st, engine.Options{
		Concurrency:    cfg.Run.Concurrency,
		RetentionYears: cfg.Data.RetentionYears,
	}, log)
	return eng, reg, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("macropulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Snapshot Command ---

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch one day's values and merge them into the series",
	Long: `Resolves every configured indicator for one day (today by default) and
merges the values into the stored series. Indicators whose sources fail
fall back to the most recent cached value and are marked stale; ones
with no cached history go missing for the day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		day := utils.Today()
		if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
			var err error
			day, err = utils.ParseDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateStr, err)
			}
		}

		eng, reg, err := buildEngine()
		if err != nil {
			return err
		}
		summary, err := eng.Snapshot(cmd.Context(), day)
		if err != nil {
			return err
		}
		printSummary(reg, summary)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().String("date", "", "target day (YYYY-MM-DD, default: today UTC)")
}

// --- Backfill Command ---

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild historical values over a date window",
	Long: `Fetches each indicator's history over a window and replays it day by
day into the stored series, filling gaps without touching values that
already came from a live fetch.

Examples:
  macropulse backfill                       # full retention window up to today
  macropulse backfill --start 2024-01-01
  macropulse backfill --start 2024-01-01 --end 2024-03-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		end := utils.Today()
		if endStr, _ := cmd.Flags().GetString("end"); endStr != "" {
			var err error
			end, err = utils.ParseDate(endStr)
			if err != nil {
				return fmt.Errorf("invalid --end %q: %w", endStr, err)
			}
		}

		start := end.AddDate(-cfg.Data.RetentionYears, 0, 0)
		if startStr, _ := cmd.Flags().GetString("start"); startStr != "" {
			var err error
			start, err = utils.ParseDate(startStr)
			if err != nil {
				return fmt.Errorf("invalid --start %q: %w", startStr, err)
			}
		}

		eng, reg, err := buildEngine()
		if err != nil {
			return err
		}
		summary, err := eng.Backfill(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		printSummary(reg, summary)
		return nil
	},
}

func init() {
	backfillCmd.Flags().String("start", "", "first day of the window (YYYY-MM-DD, default: end minus retention)")
	backfillCmd.Flags().String("end", "", "last day of the window (YYYY-MM-DD, default: today UTC)")
}

// --- Show Command ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent records from the stored series",
	RunE: func(cmd *cobra.Command, args []string) error {
		last, _ := cmd.Flags().GetInt("last")

		reg, err := registry.New(cfg.IndicatorSpecs())
		if err != nil {
			return fmt.Errorf("invalid indicator configuration: %w", err)
		}
		st := store.New(cfg.Data.File, reg.IDs(), log)
		series := st.Load()

		if series.Len() == 0 {
			fmt.Printf("No data in %s yet. Run 'macropulse snapshot' or 'macropulse backfill' first.\n", st.Path())
			return nil
		}

		records := series.Records
		if last > 0 && len(records) > last {
			records = records[len(records)-last:]
		}

		for _, rec := range records {
			fmt.Printf("%s\n", utils.FormatDate(rec.Date))
			for _, id := range reg.IDs() {
				obs, ok := rec.Values[id]
				switch {
				case !ok:
					fmt.Printf("   %-10s %14s\n", id, "—")
				case obs.Stale:
					fmt.Printf("   %-10s %14s   ⚠️  stale\n", id, formatIndicatorValue(reg, id, obs.Value))
				default:
					fmt.Printf("   %-10s %14s\n", id, formatIndicatorValue(reg, id, obs.Value))
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Int("last", 5, "number of most recent records to print")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, data file, and provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.New(cfg.IndicatorSpecs())
		if err != nil {
			return fmt.Errorf("invalid indicator configuration: %w", err)
		}
		adapters := provider.NewRegistry()
		if err := providers.RegisterAll(adapters, cfg); err != nil {
			return err
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  macropulse — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  Indicators:  %d configured\n", reg.Len())
		fmt.Printf("  Concurrency: %d workers\n", cfg.Run.Concurrency)
		fmt.Println()

		st := store.New(cfg.Data.File, reg.IDs(), log)
		series := st.Load()
		fmt.Println("  Data:")
		fmt.Printf("    File:      %s\n", st.Path())
		if series.Len() == 0 {
			fmt.Println("    Records:   none")
		} else {
			first := series.Records[0].Date
			lastRec := series.Records[series.Len()-1].Date
			fmt.Printf("    Records:   %d (%s → %s)\n", series.Len(), utils.FormatDate(first), utils.FormatDate(lastRec))
			fmt.Printf("    Updated:   %s\n", series.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
		}
		fmt.Printf("    Retention: %d years\n", cfg.Data.RetentionYears)
		fmt.Println()

		fmt.Println("  Providers:")
		for _, info := range adapters.List() {
			note := ""
			if info.Degraded {
				note = "  ⚠️  degraded (missing credential)"
			}
			fmt.Printf("    %-8s %s%s\n", info.Name, info.BaseURL, note)
		}
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println()

		fmt.Println("  Catalog:")
		for _, spec := range reg.List() {
			symbols := spec.Symbol
			if len(spec.Fallbacks) > 0 {
				symbols += " (" + strings.Join(spec.Fallbacks, ", ") + ")"
			}
			fmt.Printf("    %-10s %-6s %-22s %s\n", spec.ID, spec.Provider, symbols, spec.Transform)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Output helpers ---

// printSummary renders a run's outcome as a per-indicator table.
func printSummary(reg *registry.Registry, s models.RunSummary) {
	live, stale, missing := s.Live(), s.Stale(), s.Missing()

	verb := "Snapshot"
	if s.Days > 1 {
		verb = "Backfill"
	}
	fmt.Printf("\n📈 %s %s — %d live, %d stale, %d missing\n",
		verb, utils.FormatDate(s.Date), len(live), len(stale), len(missing))
	if s.Days > 1 {
		fmt.Printf("   %d days processed, %d merged into the series\n", s.Days, s.Merged)
	}
	fmt.Println()

	for _, r := range s.Results {
		switch r.Status {
		case models.StatusLive:
			fmt.Printf("   ✅ %-10s %14s   %s\n", r.ID, formatIndicatorValue(reg, r.ID, r.Value), r.Source)
		case models.StatusStale:
			fmt.Printf("   ⚠️  %-10s %14s   cache, as of %s\n", r.ID, formatIndicatorValue(reg, r.ID, r.Value), utils.FormatDate(r.AsOf))
		default:
			fmt.Printf("   ❌ %-10s %14s\n", r.ID, "no value")
		}
	}
}

// formatIndicatorValue picks a display format from the indicator's
// transform: year-over-year series print as signed percentages.
func formatIndicatorValue(reg *registry.Registry, id string, v float64) string {
	if spec, ok := reg.Get(id); ok && spec.Transform == registry.TransformYoY {
		return utils.FormatPct(v)
	}
	return utils.FormatValue(v)
}
