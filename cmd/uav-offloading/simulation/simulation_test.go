package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/config"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
	"github.com/picogrid/uav-offload-sim/pkg/simulation"
)

func testConfig(devices, uavs, slots int) *config.SimulationConfig {
	cfg := config.GetDefaultConfig()
	cfg.IoT.DeviceCount = devices
	cfg.UAV.Count = uavs
	cfg.Simulation.TimeSlots = slots
	cfg.Simulation.Seed = 42
	return cfg
}

func quietLogger() logger.Logger {
	return logger.NewWithConfig(logger.Config{Level: logger.ErrorLevel, Writer: io.Discard, NoColor: true})
}

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestValidateAndParse(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr bool
		check   func(t *testing.T, p *Params)
	}{
		{
			name:   "empty",
			params: map[string]interface{}{},
			check: func(t *testing.T, p *Params) {
				if len(p.Overrides) != 0 || p.ConfigPath != "" {
					t.Errorf("Expected no overrides, got %+v", p)
				}
			},
		},
		{
			name: "whole floats become ints",
			params: map[string]interface{}{
				"device_count": 300.0,
				"uav_count":    int64(5),
				"seed":         7.0,
				"config_path":  "custom.yaml",
			},
			check: func(t *testing.T, p *Params) {
				if p.Overrides["device_count"] != 300 {
					t.Errorf("Expected device_count 300, got %v", p.Overrides["device_count"])
				}
				if p.Overrides["uav_count"] != 5 {
					t.Errorf("Expected uav_count 5, got %v", p.Overrides["uav_count"])
				}
				if p.Overrides["seed"] != int64(7) {
					t.Errorf("Expected seed 7, got %v", p.Overrides["seed"])
				}
				if p.ConfigPath != "custom.yaml" {
					t.Errorf("Expected config path, got %q", p.ConfigPath)
				}
			},
		},
		{
			name:    "fractional count",
			params:  map[string]interface{}{"device_count": 2.5},
			wantErr: true,
		},
		{
			name:    "negative count",
			params:  map[string]interface{}{"uav_count": -1},
			wantErr: true,
		},
		{
			name:    "string count",
			params:  map[string]interface{}{"time_slots": "ten"},
			wantErr: true,
		},
		{
			name:    "probability out of range",
			params:  map[string]interface{}{"task_probability": 1.5},
			wantErr: true,
		},
		{
			name:    "report flag not boolean",
			params:  map[string]interface{}{"enable_report": "yes"},
			wantErr: true,
		},
		{
			name:   "report settings",
			params: map[string]interface{}{"enable_report": true, "report_path": "out", "log_level": "debug"},
			check: func(t *testing.T, p *Params) {
				if p.Overrides["enable_report"] != true || p.Overrides["report_path"] != "out" || p.Overrides["log_level"] != "debug" {
					t.Errorf("Unexpected overrides: %+v", p.Overrides)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ValidateAndParse(tt.params)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %+v", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestEngineHistories(t *testing.T) {
	cfg := testConfig(20, 3, 6)
	engine := NewEngine(cfg, nil, quietLogger())
	engine.Run()

	if engine.SlotsElapsed() != 6 {
		t.Fatalf("Expected 6 slots, got %d", engine.SlotsElapsed())
	}

	for _, d := range engine.Devices() {
		if len(d.History) != 7 {
			t.Errorf("Expected 7 positions for device %d, got %d", d.ID, len(d.History))
		}
		if d.Position.X < 0 || d.Position.X > cfg.Simulation.AreaSize || d.Position.Y < 0 || d.Position.Y > cfg.Simulation.AreaSize {
			t.Errorf("Device %d left the area: %+v", d.ID, d.Position)
		}
	}

	for _, u := range engine.UAVs() {
		if len(u.History) != 7 {
			t.Errorf("Expected 7 positions for UAV %d, got %d", u.ID, len(u.History))
		}
		if u.Position.Z < 0 || u.Position.Z > cfg.UAV.FlyingHeight {
			t.Errorf("Expected UAV %d between ground and %f, got %f", u.ID, cfg.UAV.FlyingHeight, u.Position.Z)
		}
	}

	if len(engine.UAVPositionsOverTime()) != 6 || len(engine.IoTPositionsOverTime()) != 6 || len(engine.EfficiencyOverTime()) != 6 {
		t.Errorf("Expected one time-series entry per slot, got %d/%d/%d",
			len(engine.UAVPositionsOverTime()), len(engine.IoTPositionsOverTime()), len(engine.EfficiencyOverTime()))
	}
	if len(engine.SlotStats()) != 6 {
		t.Errorf("Expected 6 slot stats, got %d", len(engine.SlotStats()))
	}
}

func TestEngineUtilityCountsEveryDecision(t *testing.T) {
	engine := NewEngine(testConfig(50, 2, 5), nil, quietLogger())

	var volume float64
	decided := 0
	for i := 0; i < 5; i++ {
		engine.Step()
		for _, d := range engine.LastDecisions() {
			volume += d.Task.DataSize
			decided++
		}
	}

	if decided == 0 {
		t.Fatalf("Expected tasks to be generated")
	}
	if !almostEqual(engine.SystemUtility(), volume) {
		t.Errorf("Expected utility %f, got %f", volume, engine.SystemUtility())
	}

	last := engine.SlotStats()[4]
	if !almostEqual(last.Utility, volume) || !almostEqual(last.Energy, engine.TotalEnergy()) {
		t.Errorf("Expected the last slot to carry the cumulative totals, got %+v", last)
	}
	if engine.TotalEnergy() <= 0 {
		t.Errorf("Expected positive energy, got %f", engine.TotalEnergy())
	}
	if !almostEqual(engine.EnergyEfficiency(), volume/engine.TotalEnergy()) {
		t.Errorf("Unexpected efficiency %f", engine.EnergyEfficiency())
	}
}

func TestEngineEmptyScenario(t *testing.T) {
	engine := NewEngine(testConfig(0, 2, 3), nil, quietLogger())
	engine.Run()

	if engine.TotalEnergy() != 0 || engine.SystemUtility() != 0 {
		t.Errorf("Expected no energy or utility, got %f and %f", engine.TotalEnergy(), engine.SystemUtility())
	}
	if engine.EnergyEfficiency() != 0 {
		t.Errorf("Expected efficiency 0 without energy, got %f", engine.EnergyEfficiency())
	}
	for _, u := range engine.UAVs() {
		if len(u.History) != 4 {
			t.Errorf("Expected UAV %d to keep moving, got %d positions", u.ID, len(u.History))
		}
	}
}

func TestEngineZeroSlots(t *testing.T) {
	engine := NewEngine(testConfig(10, 1, 0), nil, quietLogger())
	engine.Run()

	if engine.SlotsElapsed() != 0 || len(engine.SlotStats()) != 0 {
		t.Errorf("Expected nothing to run, got %d slots", engine.SlotsElapsed())
	}
	if len(engine.Devices()[0].History) != 1 {
		t.Errorf("Expected only the initial position, got %d", len(engine.Devices()[0].History))
	}
}

func TestEngineDeterministic(t *testing.T) {
	a := NewEngine(testConfig(40, 3, 8), rand.New(rand.NewSource(9)), quietLogger())
	b := NewEngine(testConfig(40, 3, 8), rand.New(rand.NewSource(9)), quietLogger())
	a.Run()
	b.Run()

	if a.TotalEnergy() != b.TotalEnergy() || a.SystemUtility() != b.SystemUtility() {
		t.Errorf("Expected identical runs, got %f/%f and %f/%f",
			a.TotalEnergy(), a.SystemUtility(), b.TotalEnergy(), b.SystemUtility())
	}
	for i, u := range a.UAVs() {
		if u.Position != b.UAVs()[i].Position {
			t.Errorf("UAV %d diverged: %+v vs %+v", i, u.Position, b.UAVs()[i].Position)
		}
	}
}

func TestEngineConcurrentDecisionsMatchSequential(t *testing.T) {
	sequentialCfg := testConfig(200, 4, 5)
	concurrentCfg := testConfig(200, 4, 5)
	concurrentCfg.Performance.DecisionWorkers = 4

	sequential := NewEngine(sequentialCfg, nil, quietLogger())
	concurrent := NewEngine(concurrentCfg, nil, quietLogger())
	sequential.Run()
	if err := concurrent.RunContext(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !almostEqual(sequential.TotalEnergy(), concurrent.TotalEnergy()) {
		t.Errorf("Expected energy %f, got %f", sequential.TotalEnergy(), concurrent.TotalEnergy())
	}
	if !almostEqual(sequential.SystemUtility(), concurrent.SystemUtility()) {
		t.Errorf("Expected utility %f, got %f", sequential.SystemUtility(), concurrent.SystemUtility())
	}
}

func TestEngineOnSlot(t *testing.T) {
	engine := NewEngine(testConfig(10, 1, 4), nil, quietLogger())

	var slots []int
	engine.OnSlot(func(stats SlotStats) {
		slots = append(slots, stats.Slot)
		if stats.Tasks != stats.Offloaded+stats.Local {
			t.Errorf("Slot %d: %d tasks but %d+%d decisions", stats.Slot, stats.Tasks, stats.Offloaded, stats.Local)
		}
	})
	engine.Run()

	if len(slots) != 4 || slots[0] != 0 || slots[3] != 3 {
		t.Errorf("Expected hooks for slots 0..3, got %v", slots)
	}
}

func TestRunContextCanceled(t *testing.T) {
	engine := NewEngine(testConfig(10, 1, 10), nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.RunContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if engine.SlotsElapsed() != 0 {
		t.Errorf("Expected no slots to run, got %d", engine.SlotsElapsed())
	}
}

func TestOffloadingSimulationRegistered(t *testing.T) {
	if !simulation.DefaultRegistry.Has(Name) {
		t.Fatalf("Expected %q to be registered", Name)
	}

	sim, err := simulation.DefaultRegistry.Get(Name)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sim.Name() != Name || sim.Description() == "" {
		t.Errorf("Unexpected simulation: %s", sim.Name())
	}
}

func TestOffloadingSimulationRun(t *testing.T) {
	dir := t.TempDir()
	sim := NewOffloadingSimulation().(*OffloadingSimulation)

	if err := sim.Run(context.Background()); err == nil {
		t.Errorf("Expected an error before Configure")
	}

	err := sim.Configure(map[string]interface{}{
		"device_count":  15,
		"uav_count":     2,
		"time_slots":    3,
		"seed":          7,
		"enable_report": true,
		"report_path":   dir,
	})
	if err != nil {
		t.Fatalf("Failed to configure: %v", err)
	}

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	metrics := sim.Metrics()
	if metrics[MetricSlotsElapsed] != 3 {
		t.Errorf("Expected 3 slots elapsed, got %f", metrics[MetricSlotsElapsed])
	}
	if !almostEqual(metrics[MetricTotalEnergy], metrics[MetricUAVEnergy]+metrics[MetricDeviceEnergy]) {
		t.Errorf("Expected total energy to be the sum of both sides, got %+v", metrics)
	}
	if metrics[MetricTasksOffloaded] > metrics[MetricTasksDecided] {
		t.Errorf("Offloaded more tasks than decided: %+v", metrics)
	}

	path := sim.ReportPath()
	if path == "" {
		t.Fatalf("Expected a report to be written")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected report at %s: %v", path, err)
	}
}

func TestOffloadingSimulationConfigureErrors(t *testing.T) {
	sim := NewOffloadingSimulation()

	if err := sim.Configure(map[string]interface{}{"device_count": -5}); err == nil {
		t.Errorf("Expected an error for a negative device count")
	}
	if err := sim.Configure(map[string]interface{}{"config_path": "/nonexistent/uav.yaml"}); err == nil {
		t.Errorf("Expected an error for a missing config file")
	}
}

func TestOffloadingSimulationStop(t *testing.T) {
	sim := NewOffloadingSimulation()
	if err := sim.Configure(map[string]interface{}{"device_count": 5, "uav_count": 1, "time_slots": 50, "seed": 3}); err != nil {
		t.Fatalf("Failed to configure: %v", err)
	}

	if err := sim.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Errorf("Expected a stopped run to end without error, got %v", err)
	}
	if len(sim.Metrics()) != 0 {
		t.Errorf("Expected no metrics from a stopped run, got %+v", sim.Metrics())
	}
}

func TestOffloadingSimulationParentCanceled(t *testing.T) {
	sim := NewOffloadingSimulation()
	if err := sim.Configure(map[string]interface{}{"device_count": 5, "uav_count": 1, "time_slots": 50, "seed": 3}); err != nil {
		t.Fatalf("Failed to configure: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sim.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if sim.Metrics()[MetricSlotsElapsed] != 0 {
		t.Errorf("Expected no slots, got %f", sim.Metrics()[MetricSlotsElapsed])
	}
}

func TestStepContextCanceledKeepsHistories(t *testing.T) {
	cfg := testConfig(50, 3, 5)
	cfg.Performance.DecisionWorkers = 4
	engine := NewEngine(cfg, nil, quietLogger())
	engine.Step()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := engine.StepContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	if engine.SlotsElapsed() != 1 {
		t.Fatalf("Expected 1 slot elapsed, got %d", engine.SlotsElapsed())
	}
	for _, d := range engine.Devices() {
		if len(d.History) != engine.SlotsElapsed()+1 {
			t.Errorf("Device %d has %d positions after %d slots", d.ID, len(d.History), engine.SlotsElapsed())
		}
	}
	for _, u := range engine.UAVs() {
		if len(u.History) != engine.SlotsElapsed()+1 {
			t.Errorf("UAV %d has %d positions after %d slots", u.ID, len(u.History), engine.SlotsElapsed())
		}
	}

	// The canceled step must not have consumed randomness
	reference := NewEngine(cfg, nil, quietLogger())
	reference.Step()
	reference.Step()
	engine.Step()
	if engine.TotalEnergy() != reference.TotalEnergy() || engine.SystemUtility() != reference.SystemUtility() {
		t.Errorf("Expected the run to continue as if uninterrupted, got %f/%f vs %f/%f",
			engine.TotalEnergy(), engine.SystemUtility(), reference.TotalEnergy(), reference.SystemUtility())
	}
}

func TestOffloadingSimulationLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "run.log")
	configPath := filepath.Join(dir, "scenario.yaml")

	scenario := fmt.Sprintf(`simulation:
  time_slots: 2
  seed: 5
iot:
  device_count: 5
uav:
  count: 1
logging:
  log_file: %s
`, logPath)
	if err := os.WriteFile(configPath, []byte(scenario), 0644); err != nil {
		t.Fatalf("Failed to write scenario: %v", err)
	}

	sim := NewOffloadingSimulation()
	if err := sim.Configure(map[string]interface{}{"config_path": configPath}); err != nil {
		t.Fatalf("Failed to configure: %v", err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Expected log file at %s: %v", logPath, err)
	}
	if !strings.Contains(string(data), "Simulation completed") {
		t.Errorf("Expected the run log in the file, got:\n%s", data)
	}
}

func TestOffloadingSimulationRunsAgainAfterStop(t *testing.T) {
	sim := NewOffloadingSimulation()
	if err := sim.Configure(map[string]interface{}{"device_count": 5, "uav_count": 1, "time_slots": 2, "seed": 3}); err != nil {
		t.Fatalf("Failed to configure: %v", err)
	}

	if err := sim.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Expected the stopped run to end without error, got %v", err)
	}

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if sim.Metrics()[MetricSlotsElapsed] != 2 {
		t.Errorf("Expected the second run to simulate 2 slots, got %f", sim.Metrics()[MetricSlotsElapsed])
	}
}
