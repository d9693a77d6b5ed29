package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/config"
	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/reporting"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
	"github.com/picogrid/uav-offload-sim/pkg/simulation"
)

// Name is the registry name of the offloading simulation
const Name = "UAV Task Offloading"

// Metric keys reported by Metrics
const (
	MetricTotalEnergy      = "total_energy"
	MetricUAVEnergy        = "uav_energy"
	MetricDeviceEnergy     = "device_energy"
	MetricSystemUtility    = "system_utility"
	MetricEnergyEfficiency = "energy_efficiency"
	MetricSlotsElapsed     = "slots_elapsed"
	MetricTasksDecided     = "tasks_decided"
	MetricTasksOffloaded   = "tasks_offloaded"
)

// OffloadingSimulation adapts the engine to the simulation registry
type OffloadingSimulation struct {
	config *config.SimulationConfig

	mu         sync.Mutex
	engine     *Engine
	metrics    simulation.Metrics
	reportPath string
	cancel     context.CancelFunc
	stopped    bool
}

// NewOffloadingSimulation creates a new instance of the offloading simulation
func NewOffloadingSimulation() simulation.Simulation {
	return &OffloadingSimulation{}
}

// Name returns the simulation name
func (s *OffloadingSimulation) Name() string {
	return Name
}

// Description returns the simulation description
func (s *OffloadingSimulation) Description() string {
	return "Mobile UAV relays deciding per slot whether IoT tasks are offloaded or computed locally"
}

// Configure parses the parameters and loads the scenario configuration
func (s *OffloadingSimulation) Configure(params map[string]interface{}) error {
	parsed, err := ValidateAndParse(params)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg, err := config.LoadConfigWithOverrides(parsed.ConfigPath, parsed.Overrides)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if _, ok := parsed.Overrides["log_level"]; ok {
		logger.Infof("Setting log level to: %s", cfg.Logging.ConsoleLevel)
		logger.SetLevel(logger.ParseLevel(cfg.Logging.ConsoleLevel))
	}

	s.config = cfg

	logger.Infof("Configuration: %d IoT devices, %d UAVs, %d time slots",
		cfg.IoT.DeviceCount, cfg.UAV.Count, cfg.Simulation.TimeSlots)

	return nil
}

// Config returns the configuration set by Configure
func (s *OffloadingSimulation) Config() *config.SimulationConfig {
	return s.config
}

// Run executes the simulation. Stop ends it early without an error, a done
// ctx ends it early with ctx's error. The summary is printed either way.
// A Stop before Run skips that run only.
func (s *OffloadingSimulation) Run(ctx context.Context) error {
	if s.config == nil {
		return fmt.Errorf("simulation is not configured")
	}
	cfg := s.config

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.stopped {
		s.stopped = false
		s.mu.Unlock()
		return nil
	}
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.stopped = false
		s.mu.Unlock()
	}()

	if cfg.Logging.LogFile != "" {
		closeLog, err := logger.SetLogFile(cfg.Logging.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			if err := closeLog(); err != nil {
				logger.Warnf("Failed to close log file: %v", err)
			}
		}()
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	simLogger := reporting.NewSimulationLogger(reporting.NewRunID())
	log := logger.WithPrefix("uav-offloading").WithField("run", simLogger.SimulationID()[:8])
	simLogger.LogSystem("Scenario created", map[string]interface{}{
		"devices": cfg.IoT.DeviceCount,
		"uavs":    cfg.UAV.Count,
		"slots":   cfg.Simulation.TimeSlots,
		"seed":    seed,
	})

	engine := NewEngine(cfg, rand.New(rand.NewSource(seed)), log)
	engine.OnSlot(func(stats SlotStats) {
		simLogger.LogSlot(slotReport(stats, cfg.UAV.Count))
	})

	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()

	runErr := engine.RunContext(runCtx)

	s.mu.Lock()
	s.metrics = collectMetrics(engine)
	stopped := s.stopped
	s.mu.Unlock()

	simLogger.PrintSummary()
	printTopDevices(engine, cfg.Logging.TopDevices)

	if cfg.Logging.EnableReport {
		path, err := writeReport(engine, simLogger, seed)
		if err != nil {
			simLogger.LogError("Failed to write report", err, nil)
			return fmt.Errorf("failed to write report: %w", err)
		}
		s.mu.Lock()
		s.reportPath = path
		s.mu.Unlock()
	}

	if runErr != nil {
		if stopped && errors.Is(runErr, context.Canceled) {
			logger.Info("Simulation stopped by user")
			return nil
		}
		return runErr
	}

	return nil
}

// Stop interrupts a running simulation after the current slot
func (s *OffloadingSimulation) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Metrics returns the figures of the last run
func (s *OffloadingSimulation) Metrics() simulation.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics := make(simulation.Metrics, len(s.metrics))
	for k, v := range s.metrics {
		metrics[k] = v
	}
	return metrics
}

// Engine returns the engine of the last run
func (s *OffloadingSimulation) Engine() *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// ReportPath returns where the last report was written, if any
func (s *OffloadingSimulation) ReportPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportPath
}

func slotReport(stats SlotStats, uavCount int) reporting.SlotReport {
	return reporting.SlotReport{
		Slot:       stats.Slot,
		Tasks:      stats.Tasks,
		Offloaded:  stats.Offloaded,
		Local:      stats.Local,
		Utility:    stats.Utility,
		Energy:     stats.Energy,
		Efficiency: stats.Efficiency,
		UAVCount:   uavCount,
	}
}

func collectMetrics(engine *Engine) simulation.Metrics {
	tasks, offloaded := 0, 0
	for _, stats := range engine.SlotStats() {
		tasks += stats.Tasks
		offloaded += stats.Offloaded
	}

	return simulation.Metrics{
		MetricTotalEnergy:      engine.TotalEnergy(),
		MetricUAVEnergy:        engine.EnergyModel().TotalUAVEnergy(),
		MetricDeviceEnergy:     engine.EnergyModel().TotalDeviceEnergy(),
		MetricSystemUtility:    engine.SystemUtility(),
		MetricEnergyEfficiency: engine.EnergyEfficiency(),
		MetricSlotsElapsed:     float64(engine.SlotsElapsed()),
		MetricTasksDecided:     float64(tasks),
		MetricTasksOffloaded:   float64(offloaded),
	}
}

// finalSnapshot is the efficiency snapshot after the last recorded slot
func finalSnapshot(engine *Engine) map[int]float64 {
	series := engine.EfficiencyOverTime()
	if len(series) == 0 {
		return nil
	}
	return series[len(series)-1]
}

func printTopDevices(engine *Engine, k int) {
	top := reporting.TopDevices(finalSnapshot(engine), k)
	if len(top) == 0 {
		return
	}

	logger.LogSection(fmt.Sprintf("Top %d Most Efficient Devices", len(top)))
	reporting.TopDevicesTable(top).Print()
}

// BuildReport assembles the run report of a finished engine
func BuildReport(engine *Engine, simLogger *reporting.SimulationLogger, seed int64) *reporting.RunReport {
	cfg := engine.Config()

	report := &reporting.RunReport{
		Metadata: reporting.ReportMetadata{Seed: seed},
		Scenario: reporting.ScenarioSummary{
			DeviceCount:    cfg.IoT.DeviceCount,
			UAVCount:       cfg.UAV.Count,
			TimeSlots:      cfg.Simulation.TimeSlots,
			SlotsElapsed:   engine.SlotsElapsed(),
			AreaSize:       cfg.Simulation.AreaSize,
			CoverageRadius: cfg.UAV.CoverageRadius,
		},
		Results: reporting.ResultSummary{
			TotalEnergy:      engine.TotalEnergy(),
			UAVEnergy:        engine.EnergyModel().TotalUAVEnergy(),
			DeviceEnergy:     engine.EnergyModel().TotalDeviceEnergy(),
			SystemUtility:    engine.SystemUtility(),
			EnergyEfficiency: engine.EnergyEfficiency(),
		},
		TopDevices: reporting.TopDevices(finalSnapshot(engine), cfg.Logging.TopDevices),
		UAVEnergy:  engine.EnergyModel().UAVTotals(),
	}

	slots := make([]reporting.SlotReport, 0, len(engine.SlotStats()))
	for _, stats := range engine.SlotStats() {
		slots = append(slots, slotReport(stats, cfg.UAV.Count))
	}
	reporting.Finalize(report, simLogger, slots)

	return report
}

func writeReport(engine *Engine, simLogger *reporting.SimulationLogger, seed int64) (string, error) {
	report := BuildReport(engine, simLogger, seed)

	writer := reporting.NewReportWriter(reporting.ReportConfig{
		OutputDir:    engine.Config().Logging.ReportPath,
		Format:       "yaml",
		IncludeSlots: true,
	})
	return writer.Save(report)
}

func init() {
	err := simulation.DefaultRegistry.Register(Name, NewOffloadingSimulation)
	if err != nil {
		logger.Errorf("Failed to register offloading simulation: %v", err)
		return
	}
}
