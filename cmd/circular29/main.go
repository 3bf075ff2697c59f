package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/config"
	"github.com/a3tai/circular29/internal/convert"
	"github.com/a3tai/circular29/internal/logging"
	"github.com/a3tai/circular29/internal/rules"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// app carries the state shared by every subcommand once the root command's
// pre-run has loaded configuration.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	conv   *convert.Converter
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "circular29",
		Short: "Convert MahaRERA Form 3 workbooks into Circular 29 spreadsheets",
		Long: `circular29 reads Form 3 certificate workbooks (Table A, Table B, Table C)
and writes the Circular 29 unit inventory spreadsheet.

Files can be converted one at a time, a whole directory at once, or through
the tool server started with 'serve'.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	config.RegisterFlags(root.PersistentFlags(), config.DefaultConfig())

	root.AddCommand(
		a.convertCmd(),
		a.inspectCmd(),
		a.validateCmd(),
		a.batchCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

// setup loads configuration, builds the logger and the converter.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	var vocab *rules.Vocabulary
	if cfg.RulesFile != "" {
		vocab, err = rules.Load(cfg.RulesFile)
		if err != nil {
			return err
		}
		logger.Info("loaded vocabulary overrides",
			zap.String("rules_file", cfg.RulesFile),
			zap.String("version", vocab.Version))
	}

	conv, err := convert.New(vocab, logger.Named("convert"))
	if err != nil {
		return fmt.Errorf("failed to create converter: %w", err)
	}

	if cfg.IsDebug() {
		logger.Debug("starting with configuration", zap.String("config", cfg.String()))
	}

	a.cfg = cfg
	a.logger = logger
	a.conv = conv
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Form 3 to Circular 29 Converter\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
