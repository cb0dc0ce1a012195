// Package cmd contains the sleeplab CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	service "github.com/okian/sleeplab/internal/app"
	"github.com/okian/sleeplab/internal/config"
	"github.com/okian/sleeplab/pkg/logger"
)

// Version is the current version of sleeplab, set at build time.
var Version = "0.1.0"

// session carries what PersistentPreRunE resolved for the subcommands.
type session struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log logger.Logger
}

// NewRootCommand builds the command tree. Output of reports goes to the
// command's stdout; logs go to stderr.
func NewRootCommand() *cobra.Command {
	rt := &session{}

	root := &cobra.Command{
		Use:   "sleeplab",
		Short: "Sleep data pipeline, correlation report and dashboard",
		Long: `sleeplab turns an exported sleep history into a per-night dataset.

It filters out naps, normalizes bedtimes to a reference timezone, derives
durations, stage shares and sleep timing, and writes TSV snapshots. On top
of the dataset it reports correlations, draws charts and serves a dashboard.

Examples:
  sleeplab fetch --start 2024-01-01     # Download the raw sleep document
  sleeplab prep                         # Write the snapshots only
  sleeplab report --format yaml         # Correlation report as YAML
  sleeplab serve --addr :8501           # Dashboard with live reload`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "Path to config file (default: $SLEEPLAB_CONFIG)")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&rt.logFormat, "log-format", "", "Log format (text|json)")

	root.AddCommand(
		newFetchCommand(rt),
		newPrepCommand(rt),
		newReportCommand(rt),
		newServeCommand(rt),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "sleeplab:", err)
		return 1
	}
	return 0
}

func (rt *session) init(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, rt.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Options{Format: cfg.LogFormat, Output: cmd.ErrOrStderr()}); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	rt.cfg = cfg
	rt.log = logger.Get()
	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "log-level":
			cfg.LogLevel = v
		case "log-format":
			cfg.LogFormat = v
		case "addr":
			cfg.Addr = v
		case "start":
			cfg.StartDate = v
		}
	})
}

func (rt *session) service(stdout io.Writer, opts ...service.Option) (*service.Service, error) {
	opts = append([]service.Option{
		service.WithLogger(rt.log),
		service.WithStdout(stdout),
	}, opts...)
	return service.New(rt.cfg, opts...)
}
