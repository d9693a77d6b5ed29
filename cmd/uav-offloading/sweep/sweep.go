package sweep

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/config"
	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/reporting"
	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/simulation"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Row is the outcome of one scenario of the sweep
type Row struct {
	Devices        int
	Seed           int64
	Efficiency     float64 // Mb/J
	Energy         float64 // J
	Utility        float64 // Mb
	TasksDecided   int
	TasksOffloaded int
	Duration       time.Duration
}

// Summary describes one metric across all scenarios
type Summary struct {
	Metric string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Result holds the rows of a sweep in device-count order
type Result struct {
	RunID     string
	UAVCount  int
	TimeSlots int
	Rows      []Row
}

// Options tunes how a sweep runs
type Options struct {
	// Workers bounds the concurrent scenarios, 0 uses performance.worker_pool_size
	Workers int

	// Log receives the scenario logs, each with its own prefix
	Log logger.Logger

	// OnScenario is called once per finished scenario, never concurrently
	OnScenario func(Row)
}

// ScenarioSeed derives the seed of scenario i from the sweep seed
func ScenarioSeed(base int64, i int) int64 {
	return base + int64(i)*1000003
}

// Run simulates one independent scenario per device count of cfg.Sweep.
// Scenarios share nothing but the read-only cfg.
func Run(ctx context.Context, cfg *config.SimulationConfig, opts Options) (*Result, error) {
	if err := cfg.ValidateSweep(); err != nil {
		return nil, fmt.Errorf("invalid sweep: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Performance.WorkerPoolSize
	}
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}

	base := cfg.Simulation.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	counts := cfg.Sweep.DeviceCounts()
	rows := make([]Row, len(counts))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	log.Infof("Sweeping %d scenarios with %d workers", len(counts), workers)

	for i, n := range counts {
		g.Go(func() error {
			row, err := runScenario(gctx, cfg, n, ScenarioSeed(base, i), log)
			if err != nil {
				return fmt.Errorf("scenario with %d devices: %w", n, err)
			}
			rows[i] = row

			if opts.OnScenario != nil {
				mu.Lock()
				opts.OnScenario(row)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		RunID:     reporting.NewRunID(),
		UAVCount:  cfg.UAV.Count,
		TimeSlots: cfg.Simulation.TimeSlots,
		Rows:      rows,
	}, nil
}

func runScenario(ctx context.Context, base *config.SimulationConfig, devices int, seed int64, log logger.Logger) (Row, error) {
	cfg := base.Clone()
	cfg.IoT.DeviceCount = devices

	start := time.Now()
	engine := simulation.NewEngine(cfg, rand.New(rand.NewSource(seed)), log.WithPrefix(fmt.Sprintf("devices=%d", devices)))
	if err := engine.RunContext(ctx); err != nil {
		return Row{}, err
	}

	row := Row{
		Devices:    devices,
		Seed:       seed,
		Efficiency: engine.EnergyEfficiency(),
		Energy:     engine.TotalEnergy(),
		Utility:    engine.SystemUtility(),
		Duration:   time.Since(start),
	}
	for _, stats := range engine.SlotStats() {
		row.TasksDecided += stats.Tasks
		row.TasksOffloaded += stats.Offloaded
	}
	return row, nil
}

// Summaries describes efficiency, energy and utility across the rows
func (r *Result) Summaries() []Summary {
	if len(r.Rows) == 0 {
		return nil
	}

	efficiency := make([]float64, len(r.Rows))
	energy := make([]float64, len(r.Rows))
	utility := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		efficiency[i] = row.Efficiency
		energy[i] = row.Energy
		utility[i] = row.Utility
	}

	return []Summary{
		summarize("energy_efficiency", efficiency),
		summarize("total_energy", energy),
		summarize("system_utility", utility),
	}
}

func summarize(metric string, values []float64) Summary {
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	return Summary{
		Metric: metric,
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
}

// Table renders the rows for the console
func (r *Result) Table() *logger.Table {
	table := logger.NewTable("Devices", "Efficiency (Mb/J)", "Energy (J)", "Utility (Mb)", "Offloaded")
	for _, row := range r.Rows {
		offloaded := "-"
		if row.TasksDecided > 0 {
			offloaded = fmt.Sprintf("%.1f%%", 100*float64(row.TasksOffloaded)/float64(row.TasksDecided))
		}
		table.AddRow(
			fmt.Sprintf("%d", row.Devices),
			fmt.Sprintf("%.6g", row.Efficiency),
			fmt.Sprintf("%.6g", row.Energy),
			fmt.Sprintf("%.6g", row.Utility),
			offloaded,
		)
	}
	return table
}
