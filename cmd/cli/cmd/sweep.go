package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/config"
	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/results"
	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/sweep"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the offloading simulation over device counts",
	Long: `Run one independent offloading scenario per device count and
compare energy efficiency, total energy and system utility.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().Int("from", 300, "smallest device count")
	sweepCmd.Flags().Int("to", 1000, "largest device count")
	sweepCmd.Flags().Int("step", 100, "device count increment")
	sweepCmd.Flags().String("db", "", "store the rows in this SQLite database")
	sweepCmd.Flags().String("sim-config", "", "scenario configuration file (YAML)")
	sweepCmd.Flags().Int("workers", 0, "concurrent scenarios (default performance.worker_pool_size)")
	sweepCmd.Flags().Int64("seed", 0, "sweep seed (0 uses the configured seed)")
}

func runSweep(cmd *cobra.Command, _ []string) error {
	simConfig, _ := cmd.Flags().GetString("sim-config")

	cfg, err := config.LoadConfigWithOverrides(simConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags override the scenario file only when given
	if cmd.Flags().Changed("from") || simConfig == "" {
		cfg.Sweep.From, _ = cmd.Flags().GetInt("from")
	}
	if cmd.Flags().Changed("to") || simConfig == "" {
		cfg.Sweep.To, _ = cmd.Flags().GetInt("to")
	}
	if cmd.Flags().Changed("step") || simConfig == "" {
		cfg.Sweep.Step, _ = cmd.Flags().GetInt("step")
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		cfg.Simulation.Seed = seed
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Sweep.DatabasePath = db
	}
	if err := cfg.ValidateSweep(); err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counts := cfg.Sweep.DeviceCounts()
	logger.LogSection("Device Count Sweep")
	scenarios := make([]string, len(counts))
	for i, n := range counts {
		scenarios[i] = fmt.Sprintf("%d devices", n)
	}
	logger.LogList(fmt.Sprintf("%d scenarios:", len(counts)), scenarios)
	logger.LogKeyValue("UAVs", cfg.UAV.Count)
	logger.LogKeyValue("Time slots", cfg.Simulation.TimeSlots)

	bar := logger.NewProgressBar(len(counts), "Scenarios")
	result, err := sweep.Run(ctx, cfg, sweep.Options{
		Workers:    workers,
		Log:        scenarioLogger(),
		OnScenario: func(sweep.Row) { bar.Increment() },
	})
	if err != nil {
		fmt.Println()
		return fmt.Errorf("sweep failed: %w", err)
	}
	bar.Finish()

	logger.LogSection("Results")
	result.Table().Print()

	logger.LogSubSection("Across scenarios")
	summaryTable := logger.NewTable("Metric", "Mean", "Std Dev", "Min", "Max")
	for _, s := range result.Summaries() {
		summaryTable.AddRow(s.Metric,
			fmt.Sprintf("%.6g", s.Mean),
			fmt.Sprintf("%.6g", s.StdDev),
			fmt.Sprintf("%.6g", s.Min),
			fmt.Sprintf("%.6g", s.Max))
	}
	summaryTable.Print()

	if path := cfg.Sweep.DatabasePath; path != "" {
		err := logger.WithSpinner("Saving sweep rows", func() error {
			store, err := results.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.SaveSweep(result)
		})
		if err != nil {
			return err
		}
		logger.Successf("Stored run %s in %s", result.RunID, path)
	}

	return nil
}

// scenarioLogger keeps per-slot progress out of the console unless debug
// logging was asked for
func scenarioLogger() logger.Logger {
	level := logger.ParseLevel(viper.GetString("log_level"))
	if level < logger.WarnLevel && level != logger.DebugLevel {
		level = logger.WarnLevel
	}
	return logger.NewWithConfig(logger.Config{
		Level:    level,
		Writer:   os.Stdout,
		NoColor:  viper.GetBool("no_color"),
		ShowTime: true,
	}).WithPrefix("sweep")
}
