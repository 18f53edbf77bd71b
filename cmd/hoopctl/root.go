package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	service "github.com/okian/hoopmatch/internal/app"
	"github.com/okian/hoopmatch/internal/config"
	"github.com/okian/hoopmatch/pkg/logger"
)

// cli holds the global flags shared by every subcommand.
type cli struct {
	out    io.Writer
	errOut io.Writer

	dataPaths    []string
	delimiter    string
	decimalComma bool
	output       string
	verbose      bool

	root *cobra.Command
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "hoopctl",
		Short: "Compare NBA players by Career Score",
		Long: `hoopctl loads a player career stats file, z-score normalizes every numeric
column and sums the normalized values into a Career Score. Players are then
compared by the absolute difference of their scores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateFormat(c.output)
		},
	}
	c.root = root

	f := root.PersistentFlags()
	f.StringSliceVar(&c.dataPaths, "data", nil, "career stats file; repeat to give fallbacks (default from config)")
	f.StringVar(&c.delimiter, "delimiter", "", `field delimiter, e.g. ";" or "tab" (default: detect)`)
	f.BoolVar(&c.decimalComma, "decimal-comma", false, "numbers use a decimal comma")
	f.StringVarP(&c.output, "output", "o", formatTable, "output format: table, json or yaml")
	f.BoolVarP(&c.verbose, "verbose", "v", false, "log load details to stderr")

	root.AddCommand(
		c.similarCmd(),
		c.playerCmd(),
		c.summaryCmd(),
		c.playersCmd(),
		c.probeCmd(),
	)
	return root
}

// logger returns a stderr logger when verbose, a discarding one otherwise.
func (c *cli) logger() logger.Logger {
	if c.verbose {
		return logger.New(c.errOut, slog.LevelDebug)
	}
	return logger.Nop()
}

// loadService builds the service from config and flags and loads the dataset.
func (c *cli) loadService(ctx context.Context) (*service.Service, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	flags := c.root.PersistentFlags()
	if flags.Changed("data") && len(c.dataPaths) > 0 {
		cfg.DataPath = c.dataPaths[0]
		cfg.FallbackPaths = c.dataPaths[1:]
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = c.delimiter
	}
	if flags.Changed("decimal-comma") {
		cfg.DecimalComma = c.decimalComma
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc := service.New(
		service.WithLogger(c.logger()),
		service.WithDataPaths(cfg.DataPaths()...),
		service.WithDelimiter(cfg.DelimiterRune()),
		service.WithDecimalComma(cfg.DecimalComma),
		service.WithSimilarLimits(cfg.DefaultSimilar, cfg.MaxSimilar),
		service.WithTopLimits(cfg.TopLimit, cfg.MaxTopLimit),
		service.WithKeyStats(cfg.KeyStats, cfg.KeyStatsLimit),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	if err := svc.LoadError(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return svc, nil
}
