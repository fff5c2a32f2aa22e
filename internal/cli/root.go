// Package cli contains the urlbench command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/violenttestpen/urlbench/internal/bench"
	"github.com/violenttestpen/urlbench/internal/config"
	"github.com/violenttestpen/urlbench/internal/urlcases"
)

// Version is the semantic version (set via -ldflags).
var Version = "dev"

// SuiteSource supplies the suites to benchmark.
type SuiteSource func() ([]*bench.Suite, error)

type options struct {
	cfgFile string
	list    bool
}

// NewRootCommand builds the urlbench command. Output goes to stdout, logs
// and progress to stderr.
func NewRootCommand(source SuiteSource, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Compare URL and query-string implementations",
		Long: `urlbench runs the same workloads against net/url and fasthttp and
prints a ranked throughput comparison per suite.`,
		Version:       Version,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, source, opts, stdout, stderr)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	flags := cmd.Flags()
	flags.IntP(config.KeyMinSamples, "n", defaults.MinSamples, "minimum successful samples per case")
	flags.Int(config.KeyMaxAttemptsFactor, defaults.MaxAttemptsFactor, "attempt cap as a multiple of min-samples")
	flags.IntP(config.KeyWarmup, "w", defaults.Warmup, "untimed warmup runs per case")
	flags.StringSliceP(config.KeySuites, "s", nil, "only run suites with these labels")
	flags.Bool(config.KeyNoColor, defaults.NoColor, "disable coloured output")
	flags.BoolP(config.KeyVerbose, "v", defaults.Verbose, "enable debug logging")
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ./urlbench.yaml)")
	flags.BoolVar(&opts.list, "list", false, "list suites and cases, then exit")

	return cmd
}

// usageArgs maps positional-argument errors onto the usage exit code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		return nil
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func run(ctx context.Context, cmd *cobra.Command, source SuiteSource, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFilePath: opts.cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	logger := newLogger(stderr, cfg.Verbose)

	suites, err := source()
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("register suites: %w", err)}
	}
	suites, err = urlcases.Select(suites, cfg.Suites)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	if opts.list {
		for _, s := range suites {
			fmt.Fprintln(stdout, s.Label)
			for _, c := range s.Cases() {
				fmt.Fprintf(stdout, "  %s\n", c.Name)
			}
		}
		return nil
	}

	runnerOpts := []bench.Option{
		bench.WithMinSamples(cfg.MinSamples),
		bench.WithMaxAttemptsFactor(cfg.MaxAttemptsFactor),
		bench.WithWarmup(cfg.Warmup),
		bench.WithLogger(logger),
	}
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		runnerOpts = append(runnerOpts, bench.WithProgress(stderr))
	}

	var reporterOpts []bench.ReporterOption
	if cfg.NoColor {
		reporterOpts = append(reporterOpts, bench.WithColor(false))
	}
	reporter := bench.NewReporter(stdout, reporterOpts...)
	if err := reporter.Header(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	logger.Debug("starting benchmark", "suites", len(suites), "min_samples", cfg.MinSamples, "warmup", cfg.Warmup)
	results, runErr := bench.NewRunner(runnerOpts...).Run(ctx, suites)

	if err := reporter.Report(results); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return runErr
		}
		return &ExitError{Code: ExitCaseFailed, Err: runErr}
	}
	return nil
}

// Execute runs the command with the registered URL suites and exits with
// the resulting code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCommand(urlcases.Suites, color.Output, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
