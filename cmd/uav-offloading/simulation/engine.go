package simulation

import (
	"context"
	"math/rand"
	"time"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/config"
	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/core"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
)

// SlotStats summarizes one time slot. Utility and Energy are cumulative.
type SlotStats struct {
	Slot       int     `yaml:"slot"`
	Tasks      int     `yaml:"tasks"`
	Offloaded  int     `yaml:"offloaded"`
	Local      int     `yaml:"local"`
	Utility    float64 `yaml:"utility"`
	Energy     float64 `yaml:"energy"`
	Efficiency float64 `yaml:"efficiency"`
}

// Engine advances one scenario slot by slot. It is not safe for concurrent
// use; run independent scenarios on independent engines.
type Engine struct {
	cfg *config.SimulationConfig
	log logger.Logger

	devices []*core.IoTDevice
	uavs    []*core.UAV

	walk       *core.RandomWalk
	planner    *core.PathPlanner
	generator  *core.TaskGenerator
	offloading *core.OffloadingEngine
	energy     *core.EnergyModel

	slot          int
	lastDecisions []core.Decision

	uavPositions [][]core.Position
	iotPositions [][]core.Position
	efficiency   []core.EfficiencySnapshot
	stats        []SlotStats

	slotHooks []func(SlotStats)
}

// NewRand returns a generator for seed, or a clock-seeded one for 0
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// NewEngine places devices and UAVs uniformly in the area. cfg must be
// validated and is not modified. A nil rng is seeded from the config.
func NewEngine(cfg *config.SimulationConfig, rng *rand.Rand, log logger.Logger) *Engine {
	if rng == nil {
		rng = NewRand(cfg.Simulation.Seed)
	}
	if log == nil {
		log = logger.Default()
	}

	area := cfg.Simulation.AreaSize

	devices := make([]*core.IoTDevice, cfg.IoT.DeviceCount)
	deviceIDs := make([]int, len(devices))
	for i := range devices {
		devices[i] = core.NewIoTDevice(i, core.Position{
			X: rng.Float64() * area,
			Y: rng.Float64() * area,
		})
		deviceIDs[i] = i
	}

	uavs := make([]*core.UAV, cfg.UAV.Count)
	uavIDs := make([]int, len(uavs))
	for i := range uavs {
		uavs[i] = core.NewUAV(i, core.Position{
			X: rng.Float64() * area,
			Y: rng.Float64() * area,
			Z: cfg.UAV.FlyingHeight,
		})
		uavIDs[i] = i
	}

	energy := core.NewEnergyModel(EnergyParams(cfg), uavIDs, deviceIDs)

	return &Engine{
		cfg:        cfg,
		log:        log,
		devices:    devices,
		uavs:       uavs,
		walk:       core.NewRandomWalk(cfg.IoT.MobilityStep, area, rng),
		planner:    core.NewPathPlanner(area, cfg.UAV.FlyingHeight, cfg.UAV.MaxSpeed, rng),
		generator:  core.NewTaskGenerator(TaskParams(cfg), rng),
		offloading: core.NewOffloadingEngine(energy, ChannelModel(cfg), cfg.UAV.CoverageRadius),
		energy:     energy,
	}
}

// EnergyParams extracts the energy constants from the configuration
func EnergyParams(cfg *config.SimulationConfig) core.EnergyParams {
	return core.EnergyParams{
		UAV:               core.HardwareProfile{Kappa: cfg.UAV.Kappa, CPUFrequency: cfg.UAV.CPUFrequency},
		IoT:               core.HardwareProfile{Kappa: cfg.IoT.Kappa, CPUFrequency: cfg.IoT.CPUFrequency},
		TransmissionPower: cfg.IoT.TransmissionPower,
		NominalDataRate:   cfg.IoT.DataRate,
	}
}

// ChannelModel extracts the propagation constants from the configuration
func ChannelModel(cfg *config.SimulationConfig) core.ChannelModel {
	return core.ChannelModel{
		NoisePower:        cfg.Physics.NoisePower,
		Bandwidth:         cfg.Physics.Bandwidth,
		PathLossExponent:  cfg.Physics.PathLossExponent,
		TransmissionPower: cfg.IoT.TransmissionPower,
	}
}

// TaskParams extracts the task generator settings from the configuration
func TaskParams(cfg *config.SimulationConfig) core.TaskParams {
	return core.TaskParams{
		Probability:  cfg.Tasks.Probability,
		DataSizeMin:  cfg.Tasks.DataSize.Min,
		DataSizeMax:  cfg.Tasks.DataSize.Max,
		IntensityMin: cfg.Tasks.ComputationIntensity.Min,
		IntensityMax: cfg.Tasks.ComputationIntensity.Max,
		DeadlineMin:  cfg.Tasks.DeadlineSlots.Min,
		DeadlineMax:  cfg.Tasks.DeadlineSlots.Max,
	}
}

// Step executes one time slot
func (e *Engine) Step() {
	_ = e.StepContext(context.Background())
}

// StepContext executes one time slot unless ctx is already done. A slot
// that starts always completes, so entity histories stay one entry longer
// than the slots elapsed.
func (e *Engine) StepContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := e.slot

	for _, d := range e.devices {
		d.MoveTo(e.walk.Next(d.Position))
	}

	// UAVs chase the efficiency signal of the previous slot
	snapshot := e.offloading.Snapshot()
	for _, u := range e.uavs {
		u.MoveTo(e.planner.Next(u.Position, e.devices, snapshot))
	}

	tasks := e.generator.Generate(e.devices, t)

	var decisions []core.Decision
	if workers := e.cfg.Performance.DecisionWorkers; workers > 1 {
		// Never canceled, the error path is unreachable
		decisions, _ = e.offloading.DecideConcurrent(context.Background(), tasks, e.uavs, workers)
	} else {
		decisions = e.offloading.Decide(tasks, e.uavs)
	}

	e.energy.ApplyDecisions(decisions)
	e.lastDecisions = decisions

	e.record(t, decisions)
	e.slot++

	return nil
}

func (e *Engine) record(t int, decisions []core.Decision) {
	uavPositions := make([]core.Position, len(e.uavs))
	for i, u := range e.uavs {
		uavPositions[i] = u.Position
	}
	iotPositions := make([]core.Position, len(e.devices))
	for i, d := range e.devices {
		iotPositions[i] = d.Position
	}

	e.uavPositions = append(e.uavPositions, uavPositions)
	e.iotPositions = append(e.iotPositions, iotPositions)
	e.efficiency = append(e.efficiency, e.offloading.Snapshot())

	stats := SlotStats{
		Slot:       t,
		Tasks:      len(decisions),
		Utility:    e.SystemUtility(),
		Energy:     e.TotalEnergy(),
		Efficiency: e.EnergyEfficiency(),
	}
	for _, d := range decisions {
		if d.Offloaded {
			stats.Offloaded++
		} else {
			stats.Local++
		}
	}
	e.stats = append(e.stats, stats)

	for _, hook := range e.slotHooks {
		hook(stats)
	}

	e.log.Debugf("Recorded %d UAV positions and %d IoT positions", len(uavPositions), len(iotPositions))
	e.log.Debugf("Recorded energy efficiencies for %d IoT devices", len(e.efficiency[len(e.efficiency)-1]))
}

// OnSlot registers fn to be called with the stats of every recorded slot
func (e *Engine) OnSlot(fn func(SlotStats)) {
	e.slotHooks = append(e.slotHooks, fn)
}

// Run executes all configured time slots
func (e *Engine) Run() {
	_ = e.RunContext(context.Background())
}

// RunContext executes the remaining configured time slots, checking ctx
// between slots
func (e *Engine) RunContext(ctx context.Context) error {
	total := e.cfg.Simulation.TimeSlots

	e.log.Info("Starting simulation")
	for e.slot < total {
		if err := ctx.Err(); err != nil {
			e.log.Warnf("Simulation interrupted after %d/%d time slots", e.slot, total)
			return err
		}

		e.log.Infof("Time slot %d/%d", e.slot+1, total)
		if err := e.StepContext(ctx); err != nil {
			return err
		}
	}
	e.log.Info("Simulation completed")

	return nil
}

// TotalEnergy is the energy spent by every UAV and device so far, in joules
func (e *Engine) TotalEnergy() float64 {
	return e.energy.TotalEnergy()
}

// SystemUtility is the data volume decided so far, in megabits
func (e *Engine) SystemUtility() float64 {
	return e.offloading.ProcessedVolume()
}

// EnergyEfficiency is utility per joule, 0 while no energy has been spent
func (e *Engine) EnergyEfficiency() float64 {
	energy := e.TotalEnergy()
	if energy <= 0 {
		return 0
	}
	return e.SystemUtility() / energy
}

// SlotsElapsed is the number of completed slots
func (e *Engine) SlotsElapsed() int {
	return e.slot
}

// TimeSlots is the configured number of slots
func (e *Engine) TimeSlots() int {
	return e.cfg.Simulation.TimeSlots
}

// Devices returns the IoT devices in id order
func (e *Engine) Devices() []*core.IoTDevice {
	return e.devices
}

// UAVs returns the UAVs in id order
func (e *Engine) UAVs() []*core.UAV {
	return e.uavs
}

// LastDecisions returns the decisions of the most recent slot
func (e *Engine) LastDecisions() []core.Decision {
	return e.lastDecisions
}

// UAVPositionsOverTime holds one entry per slot, indexed by UAV id
func (e *Engine) UAVPositionsOverTime() [][]core.Position {
	return e.uavPositions
}

// IoTPositionsOverTime holds one entry per slot, indexed by device id
func (e *Engine) IoTPositionsOverTime() [][]core.Position {
	return e.iotPositions
}

// EfficiencyOverTime holds the efficiency snapshot after each slot
func (e *Engine) EfficiencyOverTime() []core.EfficiencySnapshot {
	return e.efficiency
}

// SlotStats holds one summary row per slot
func (e *Engine) SlotStats() []SlotStats {
	return e.stats
}

// EnergyModel exposes the per-entity energy accumulators
func (e *Engine) EnergyModel() *core.EnergyModel {
	return e.energy
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() *config.SimulationConfig {
	return e.cfg
}
