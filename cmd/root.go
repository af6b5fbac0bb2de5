package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/arbitrage/app"
	"github.com/kilianp07/arbitrage/config"
	"github.com/kilianp07/arbitrage/infra/logger"
)

var cfgPath string

var runFlags struct {
	input   string
	output  string
	format  string
	seed    uint64
	workers int
}

var rootCmd = &cobra.Command{
	Use:          "arbitrage",
	Short:        "Battery arbitrage schedule optimizer",
	SilenceUsage: true,
	RunE:         run,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Optimise a price series window by window and write the trading report",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults and K_ environment variables apply when empty")
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		f := c.Flags()
		f.StringVarP(&runFlags.input, "input", "i", "", "price file, overrides input.path")
		f.StringVarP(&runFlags.output, "output", "o", "", "report file, overrides report.path")
		f.StringVar(&runFlags.format, "format", "", "report format (csv or json), overrides report.format")
		f.Uint64Var(&runFlags.seed, "seed", 0, "base random seed, overrides run.seed")
		f.IntVar(&runFlags.workers, "workers", 0, "windows optimised in parallel, overrides run.workers")
	}
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, nil); err != nil {
		return err
	}
	log := logger.New("main")

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	progress := svc.Progress().Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			switch p.Stage {
			case app.StageFinished:
				log.Infof("window %d/%d done: profit %.3f", p.Window+1, p.Windows, p.Profit)
			case app.StageFailed:
				log.Warnf("window %d/%d failed: %s", p.Window+1, p.Windows, p.Err)
			}
		}
	}()

	res, runErr := svc.Run(ctx)
	if err := svc.Close(); err != nil {
		log.Errorf("service close: %v", err)
	}
	<-done
	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Total Profit: %.3f\n", res.TotalProfit)
	return nil
}

// loadRunConfig loads the configuration and applies command line overrides.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Input.Path = runFlags.input
	}
	if f.Changed("output") {
		cfg.Report.Path = runFlags.output
	}
	if f.Changed("format") {
		cfg.Report.Format = runFlags.format
	}
	if f.Changed("seed") {
		seed := runFlags.seed
		cfg.Run.Seed = &seed
	}
	if f.Changed("workers") {
		cfg.Run.Workers = runFlags.workers
	}
	if cfg.Input.Path == "" {
		return nil, fmt.Errorf("no input: set input.path or --input")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
