// Package main is the fraudinv command: it investigates fraud alerts with an LLM that
// queries transaction, KYC, SIEM and similarity data through tools.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/config"
	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/report"
	"github.com/spf13/cobra"
)

// Dependencies holds the parts of the application that tests replace.
type Dependencies struct {
	ProviderFactory ProviderFactory
	Getenv          func(string) string
	Now             func() time.Time
	Renderer        report.MarkdownRenderer
	Stdout          io.Writer
	Stderr          io.Writer
}

// ProviderFactory builds the LLM backend named by the configuration.
type ProviderFactory func(ctx context.Context, cfg config.ProviderConfig, getenv func(string) string) (provider.Provider, error)

func (d Dependencies) withDefaults() Dependencies {
	if d.ProviderFactory == nil {
		d.ProviderFactory = NewProvider
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Renderer == nil {
		d.Renderer = report.GlamourRenderer{}
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	return d
}

type globalFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd(deps Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "fraudinv",
		Short:         "fraudinv - LLM-driven fraud alert investigation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (.json or .toml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging and live turn output")
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	root.AddCommand(
		newInvestigateCmd(deps, flags),
		newBatchCmd(deps, flags),
		newWatchCmd(deps, flags),
		newImportCmd(deps, flags),
		newConfigCmd(deps, flags),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(Dependencies{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config when given, otherwise the dotfile under ~/.config/fraudinv.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.NewLoader().LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
