package sweep

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/config"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
)

func sweepConfig() *config.SimulationConfig {
	cfg := config.GetDefaultConfig()
	cfg.UAV.Count = 2
	cfg.Simulation.TimeSlots = 3
	cfg.Simulation.Seed = 11
	cfg.Sweep = config.SweepConfig{From: 5, To: 25, Step: 10}
	return cfg
}

func quiet() logger.Logger {
	return logger.NewWithConfig(logger.Config{Level: logger.ErrorLevel, Writer: io.Discard, NoColor: true})
}

func TestRunSweep(t *testing.T) {
	calls := 0
	result, err := Run(context.Background(), sweepConfig(), Options{
		Workers:    2,
		Log:        quiet(),
		OnScenario: func(Row) { calls++ },
	})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	expected := []int{5, 15, 25}
	if len(result.Rows) != len(expected) {
		t.Fatalf("Expected %d rows, got %d", len(expected), len(result.Rows))
	}
	for i, n := range expected {
		row := result.Rows[i]
		if row.Devices != n {
			t.Errorf("Expected row %d for %d devices, got %d", i, n, row.Devices)
		}
		if row.Energy > 0 && math.Abs(row.Efficiency-row.Utility/row.Energy) > 1e-9*row.Efficiency {
			t.Errorf("Row %d: efficiency %f does not match utility/energy", i, row.Efficiency)
		}
		if row.TasksOffloaded > row.TasksDecided {
			t.Errorf("Row %d offloaded more than decided: %+v", i, row)
		}
	}

	if calls != 3 {
		t.Errorf("Expected 3 scenario callbacks, got %d", calls)
	}
	if result.RunID == "" || result.UAVCount != 2 || result.TimeSlots != 3 {
		t.Errorf("Unexpected result metadata: %+v", result)
	}
	if result.Table().Rows() != 3 {
		t.Errorf("Expected 3 table rows, got %d", result.Table().Rows())
	}
}

func TestSweepIndependentOfWorkers(t *testing.T) {
	sequential, err := Run(context.Background(), sweepConfig(), Options{Workers: 1, Log: quiet()})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	concurrent, err := Run(context.Background(), sweepConfig(), Options{Workers: 3, Log: quiet()})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	for i := range sequential.Rows {
		a, b := sequential.Rows[i], concurrent.Rows[i]
		if a.Seed != b.Seed || a.Energy != b.Energy || a.Utility != b.Utility {
			t.Errorf("Scenario %d differs between worker counts: %+v vs %+v", i, a, b)
		}
	}
}

func TestSweepErrors(t *testing.T) {
	cfg := sweepConfig()
	cfg.Sweep.Step = 0
	if _, err := Run(context.Background(), cfg, Options{Log: quiet()}); err == nil {
		t.Errorf("Expected an error for a zero step")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, sweepConfig(), Options{Log: quiet()}); err == nil {
		t.Errorf("Expected an error for a canceled sweep")
	}
}

func TestScenarioSeed(t *testing.T) {
	if ScenarioSeed(7, 0) != 7 {
		t.Errorf("Expected the first scenario to keep the base seed")
	}
	if ScenarioSeed(7, 1) == ScenarioSeed(7, 2) {
		t.Errorf("Expected distinct scenario seeds")
	}
}

func TestSummaries(t *testing.T) {
	result := &Result{Rows: []Row{
		{Devices: 1, Efficiency: 1, Energy: 10, Utility: 10},
		{Devices: 2, Efficiency: 3, Energy: 20, Utility: 60},
	}}

	summaries := result.Summaries()
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(summaries))
	}

	eff := summaries[0]
	if eff.Metric != "energy_efficiency" || eff.Mean != 2 || eff.Min != 1 || eff.Max != 3 {
		t.Errorf("Unexpected efficiency summary: %+v", eff)
	}
	if math.Abs(eff.StdDev-math.Sqrt2) > 1e-12 {
		t.Errorf("Expected sample std dev sqrt(2), got %f", eff.StdDev)
	}

	single := (&Result{Rows: []Row{{Energy: 5}}}).Summaries()
	if single[1].StdDev != 0 || single[1].Mean != 5 {
		t.Errorf("Expected a single row to have no spread, got %+v", single[1])
	}

	if (&Result{}).Summaries() != nil {
		t.Errorf("Expected no summaries without rows")
	}
}
