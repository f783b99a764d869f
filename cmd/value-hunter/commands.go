package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/value-hunter/internal/config"
	"github.com/yourusername/value-hunter/internal/logger"
	"github.com/yourusername/value-hunter/internal/metrics"
	"github.com/yourusername/value-hunter/internal/scheduler"
	"github.com/yourusername/value-hunter/internal/scoring"
	"github.com/yourusername/value-hunter/internal/service"
)

// cli holds flag values and the state built in PersistentPreRunE.
type cli struct {
	configFile string
	inputPath  string
	outputPath string
	csvPath    string
	jsonOnly   bool
	schedule   string

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "value-hunter [input_file]",
		Short: "Find under-rated horses in a race card",
		Long: `Scores every horse in a race card on recent form, closing speed, upset
history and venue fit, then compares the ability rank with the betting market
to grade value (S/A/B/C).`,
		Example: `  value-hunter output/result.json
  value-hunter -i output/result.json -o output/vh.json --csv output/vh.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.newService(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = svc.Run(ctx, c.resolveInput(args))
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&c.inputPath, "input", "i", "", "Input race card JSON (default from config: "+config.DefaultInputPath+")")
	rootCmd.PersistentFlags().StringVarP(&c.outputPath, "output", "o", "", "Output JSON path (default from config: "+config.DefaultOutputPath+")")
	rootCmd.PersistentFlags().StringVar(&c.csvPath, "csv", "", "Also export the evaluations as CSV to this path")
	rootCmd.PersistentFlags().BoolVar(&c.jsonOnly, "json-only", false, "Write the JSON result only, without the console report")

	rootCmd.AddCommand(newWatchCmd(c), newVersionCmd())
	return rootCmd
}

func newWatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [input_file]",
		Short: "Re-evaluate the race card on a schedule whenever it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.newService(cmd)
			if err != nil {
				return err
			}
			return c.watch(cmd.Context(), svc, c.resolveInput(args))
		},
	}
	cmd.Flags().StringVar(&c.schedule, "schedule", "", "Cron schedule, e.g. \"@every 30s\" (default from config)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "value-hunter %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	// An explicit --config must exist; the default path is optional.
	load := config.LoadWithDefaults
	if cmd.Flags().Changed("config") {
		load = config.Load
	}
	cfg, err := load(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.IO.OutputPath = c.outputPath
	}
	if flags.Changed("csv") {
		cfg.IO.CSVPath = c.csvPath
	}
	if flags.Changed("json-only") {
		cfg.IO.JSONOnly = c.jsonOnly
	}
	if flags.Changed("schedule") {
		cfg.Watch.Schedule = c.schedule
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format := cfg.App.LogFormat
	if cfg.IsProduction() {
		format = "json"
	}
	c.logger = logger.NewLogger(cfg.App.LogLevel, format, cmd.ErrOrStderr())
	c.cfg = cfg

	c.logger.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("Configuration loaded")
	return nil
}

// resolveInput picks the input path: positional argument, then --input, then
// the configured default.
func (c *cli) resolveInput(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if c.inputPath != "" {
		return c.inputPath
	}
	return c.cfg.IO.InputPath
}

func (c *cli) newService(cmd *cobra.Command) (*service.ValueHunterService, error) {
	engine, err := scoring.NewEngine(c.cfg.Scoring.EngineConfig(), c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring engine: %w", err)
	}

	opts := service.OutputOptions{
		OutputPath: c.cfg.IO.OutputPath,
		CSVPath:    c.cfg.IO.CSVPath,
		JSONOnly:   c.cfg.IO.JSONOnly,
	}
	if c.cfg.Metrics.Enabled {
		metrics.InitRegistry()
		opts.MetricsPath = c.cfg.Metrics.TextfilePath
	}

	return service.NewValueHunterService(engine, opts, cmd.OutOrStdout(), c.logger), nil
}

// watch evaluates inputPath once, then on every schedule tick when the file
// has changed, until interrupted.
func (c *cli) watch(parent context.Context, svc *service.ValueHunterService, inputPath string) error {
	if c.cfg.Watch.Schedule == "" {
		return fmt.Errorf("watch requires a schedule (--schedule or watch.schedule)")
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(svc, c.cfg.Watch.CacheTTL(), c.logger)
	if err := sched.ScheduleWatch(c.cfg.Watch.Schedule, inputPath); err != nil {
		return err
	}

	if _, err := sched.RunIfChanged(ctx, inputPath); err != nil {
		c.logger.WithError(err).Error("Initial evaluation failed")
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-ctx.Done()
	c.logger.Info("Shutdown signal received")
	return sched.Stop()
}
