package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Cyclone1070/fraudinv/internal/config"
	"github.com/Cyclone1070/fraudinv/internal/dataset"
	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/Cyclone1070/fraudinv/internal/investigation"
	"github.com/Cyclone1070/fraudinv/internal/report"
	"github.com/Cyclone1070/fraudinv/internal/vectorindex"
	"github.com/Cyclone1070/fraudinv/internal/watch"
	"github.com/Cyclone1070/fraudinv/internal/workflow/runner"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const reportWidth = 100

func newInvestigateCmd(deps Dependencies, flags *globalFlags) *cobra.Command {
	var (
		alert  investigation.Alert
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "investigate",
		Short: "Investigate a single alert",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := alert.Validate(); err != nil {
				return err
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg, deps, flags.verbose)
			if err != nil {
				return err
			}
			rec, err := a.runner.Investigate(cmd.Context(), alert)
			if cerr := a.Close(); cerr != nil {
				a.logger.Warn("closing datastore", "error", cerr)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(deps.Stdout, rec)
			}
			fmt.Fprintln(deps.Stdout, report.Headline(rec))
			fmt.Fprintln(deps.Stdout, report.Record(rec, deps.Renderer, reportWidth))
			return nil
		},
	}
	cmd.Flags().StringVar(&alert.TransactionID, "txn", "", "transaction id under investigation")
	cmd.Flags().StringVar(&alert.Description, "description", "", "alert description")
	cmd.Flags().Float64Var(&alert.RiskScore, "risk", 0, "initial risk score in [0, 1]")
	cmd.Flags().IntVar(&alert.MaxTurns, "max-turns", 0, "turn budget for this alert (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	_ = cmd.MarkFlagRequired("txn")
	return cmd
}

func newBatchCmd(deps Dependencies, flags *globalFlags) *cobra.Command {
	var (
		workers int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Investigate every alert in a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := investigation.LoadAlerts(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return errors.New("--workers must be >= 1")
				}
				cfg.Runner.Workers = workers
			}
			a, err := buildApp(cmd.Context(), cfg, deps, flags.verbose)
			if err != nil {
				return err
			}
			res := a.runner.RunBatch(cmd.Context(), alerts)
			if cerr := a.Close(); cerr != nil {
				a.logger.Warn("closing datastore", "error", cerr)
			}
			if asJSON {
				return writeJSON(deps.Stdout, res)
			}
			for _, rec := range res.Records {
				fmt.Fprintln(deps.Stdout, report.Headline(rec))
			}
			fmt.Fprintln(deps.Stdout)
			fmt.Fprintln(deps.Stdout, report.Summary(res))
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "parallel investigations (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the batch result as JSON")
	return cmd
}

func newWatchCmd(deps Dependencies, flags *globalFlags) *cobra.Command {
	var inbox, schedule string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Investigate alert files dropped into an inbox directory on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if inbox != "" {
				cfg.Runner.InboxDir = inbox
			}
			if schedule != "" {
				cfg.Runner.WatchSchedule = schedule
			}
			a, err := buildApp(cmd.Context(), cfg, deps, flags.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := watch.New(watch.Config{
				InboxDir: cfg.Runner.InboxDir,
				Schedule: cfg.Runner.WatchSchedule,
				Clock:    deps.Now,
				Logger:   a.logger.With("component", "watch"),
				OnBatch: func(res *runner.BatchResult) {
					fmt.Fprintln(deps.Stdout, report.Summary(res))
				},
			}, a.runner)
			if err != nil {
				return err
			}
			if err := w.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			w.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&inbox, "inbox", "", "inbox directory (default from config)")
	cmd.Flags().StringVar(&schedule, "schedule", "", `cron spec such as "*/5 * * * *" or "@every 1m" (default from config)`)
	return cmd
}

func newImportCmd(deps Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load a JSON dataset into the investigation database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, deps.Stderr)

			bundle, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			embedder, err := newEmbedder(cfg.Data.Embedding, deps.Getenv)
			if err != nil {
				return err
			}
			store, err := datastore.Create(cfg.Data.DatabasePath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()
			index, err := vectorindex.CreateIndex(store, embedder)
			if err != nil {
				return err
			}

			stats, err := dataset.Import(cmd.Context(), store, index, bundle)
			if err != nil {
				return err
			}
			logger.Info("dataset imported", "database", cfg.Data.DatabasePath, "transactions", stats.Transactions)
			fmt.Fprintf(deps.Stdout, "Imported into %s:\n", cfg.Data.DatabasePath)
			fmt.Fprintf(deps.Stdout, "  transactions  %d\n", stats.Transactions)
			fmt.Fprintf(deps.Stdout, "  kyc profiles  %d\n", stats.KYCProfiles)
			fmt.Fprintf(deps.Stdout, "  siem events   %d\n", stats.SIEMEvents)
			for _, c := range []string{vectorindex.CollectionCases, vectorindex.CollectionPatterns, vectorindex.CollectionProfiles} {
				fmt.Fprintf(deps.Stdout, "  %-13s %d\n", c, stats.Documents[c])
			}
			return nil
		},
	}
}

func newConfigCmd(deps Dependencies, flags *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return writeConfig(deps.Stdout, cfg, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml or json")
	return cmd
}

func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return writeJSON(w, cfg)
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
