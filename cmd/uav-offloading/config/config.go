package config

import (
	"fmt"
)

// SimulationConfig holds the complete simulation configuration
type SimulationConfig struct {
	// Basic simulation settings
	Simulation SimulationSettings `yaml:"simulation"`

	// IoT device population
	IoT IoTConfig `yaml:"iot"`

	// UAV fleet
	UAV UAVConfig `yaml:"uav"`

	// Channel constants
	Physics PhysicsConfig `yaml:"physics"`

	// Task generation
	Tasks TaskConfig `yaml:"tasks"`

	// Performance settings
	Performance PerformanceConfig `yaml:"performance"`

	// Logging and reporting
	Logging LoggingConfig `yaml:"logging"`

	// Device-count sweep
	Sweep SweepConfig `yaml:"sweep"`
}

// SimulationSettings holds basic simulation settings
type SimulationSettings struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	TimeSlots   int     `yaml:"time_slots"`
	AreaSize    float64 `yaml:"area_size"` // meters
	Seed        int64   `yaml:"seed"`      // 0 picks a time-based seed
}

// IoTConfig describes the IoT devices and their hardware
type IoTConfig struct {
	DeviceCount       int     `yaml:"device_count"`
	MobilityStep      float64 `yaml:"mobility_step"`      // meters per slot
	TransmissionPower float64 `yaml:"transmission_power"` // watts
	Kappa             float64 `yaml:"kappa"`
	CPUFrequency      float64 `yaml:"cpu_frequency"` // Hz
	DataRate          float64 `yaml:"data_rate"`     // nominal, bits per second
}

// UAVConfig describes the UAV fleet and its hardware
type UAVConfig struct {
	Count          int     `yaml:"count"`
	FlyingHeight   float64 `yaml:"flying_height"`   // meters
	MaxSpeed       float64 `yaml:"max_speed"`       // meters per slot
	CoverageRadius float64 `yaml:"coverage_radius"` // meters
	Kappa          float64 `yaml:"kappa"`
	CPUFrequency   float64 `yaml:"cpu_frequency"` // Hz
}

// PhysicsConfig holds the propagation constants
type PhysicsConfig struct {
	NoisePower       float64 `yaml:"noise_power"` // watts
	Bandwidth        float64 `yaml:"bandwidth"`   // Hz
	PathLossExponent float64 `yaml:"path_loss_exponent"`
}

// Range is a closed interval of floats
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IntRange is a closed interval of integers
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// TaskConfig controls the stochastic task generator
type TaskConfig struct {
	Probability          float64  `yaml:"probability"`           // per device per slot
	DataSize             Range    `yaml:"data_size"`             // megabits
	ComputationIntensity Range    `yaml:"computation_intensity"` // cycles per bit
	DeadlineSlots        IntRange `yaml:"deadline_slots"`
}

// PerformanceConfig defines performance settings
type PerformanceConfig struct {
	DecisionWorkers int `yaml:"decision_workers"` // 1 keeps offloading decisions sequential
	WorkerPoolSize  int `yaml:"worker_pool_size"` // concurrent sweep scenarios
}

// LoggingConfig defines logging and reporting settings
type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"` // "debug", "info", "warn", "error"
	LogFile      string `yaml:"log_file"`
	EnableReport bool   `yaml:"enable_report"`
	ReportPath   string `yaml:"report_path"`
	TopDevices   int    `yaml:"top_devices"`
}

// SweepConfig defines the device-count sweep
type SweepConfig struct {
	From         int    `yaml:"from"`
	To           int    `yaml:"to"`
	Step         int    `yaml:"step"`
	DatabasePath string `yaml:"database_path"`
}

// Validate checks if the configuration is valid
func (c *SimulationConfig) Validate() error {
	if c.Simulation.Name == "" {
		return fmt.Errorf("simulation name is required")
	}

	if c.Simulation.TimeSlots < 0 {
		return fmt.Errorf("time slots must not be negative")
	}

	if c.Simulation.AreaSize <= 0 {
		return fmt.Errorf("area size must be positive")
	}

	if c.IoT.DeviceCount < 0 {
		return fmt.Errorf("device count must not be negative")
	}

	if c.UAV.Count < 0 {
		return fmt.Errorf("UAV count must not be negative")
	}

	if c.IoT.MobilityStep < 0 {
		return fmt.Errorf("mobility step must not be negative")
	}

	// Physical constants feed denominators and squares
	positives := []struct {
		name  string
		value float64
	}{
		{"iot transmission power", c.IoT.TransmissionPower},
		{"iot kappa", c.IoT.Kappa},
		{"iot cpu frequency", c.IoT.CPUFrequency},
		{"iot data rate", c.IoT.DataRate},
		{"uav max speed", c.UAV.MaxSpeed},
		{"uav coverage radius", c.UAV.CoverageRadius},
		{"uav kappa", c.UAV.Kappa},
		{"uav cpu frequency", c.UAV.CPUFrequency},
		{"noise power", c.Physics.NoisePower},
		{"bandwidth", c.Physics.Bandwidth},
		{"path loss exponent", c.Physics.PathLossExponent},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive", p.name)
		}
	}

	if c.UAV.FlyingHeight < 0 {
		return fmt.Errorf("flying height must not be negative")
	}

	if c.Tasks.Probability < 0 || c.Tasks.Probability > 1 {
		return fmt.Errorf("task probability must be between 0.0 and 1.0")
	}

	if c.Tasks.DataSize.Min <= 0 || c.Tasks.DataSize.Min > c.Tasks.DataSize.Max {
		return fmt.Errorf("data size range must be positive with min <= max")
	}

	if c.Tasks.ComputationIntensity.Min <= 0 || c.Tasks.ComputationIntensity.Min > c.Tasks.ComputationIntensity.Max {
		return fmt.Errorf("computation intensity range must be positive with min <= max")
	}

	if c.Tasks.DeadlineSlots.Min < 0 || c.Tasks.DeadlineSlots.Min > c.Tasks.DeadlineSlots.Max {
		return fmt.Errorf("deadline range must be non-negative with min <= max")
	}

	if c.Performance.DecisionWorkers < 1 {
		return fmt.Errorf("decision workers must be at least 1")
	}

	if c.Performance.WorkerPoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1")
	}

	return nil
}

// ValidateSweep checks the sweep bounds
func (c *SimulationConfig) ValidateSweep() error {
	if c.Sweep.Step <= 0 {
		return fmt.Errorf("sweep step must be positive")
	}
	if c.Sweep.From < 0 || c.Sweep.From > c.Sweep.To {
		return fmt.Errorf("sweep range must be non-negative with from <= to")
	}
	return nil
}

// DeviceCounts expands the sweep range into the device counts to simulate
func (s SweepConfig) DeviceCounts() []int {
	if s.Step <= 0 || s.From > s.To {
		return nil
	}
	counts := make([]int, 0, (s.To-s.From)/s.Step+1)
	for n := s.From; n <= s.To; n += s.Step {
		counts = append(counts, n)
	}
	return counts
}

// Clone returns an independent copy for per-scenario overrides. The config
// holds only value fields, so a struct copy is enough.
func (c *SimulationConfig) Clone() *SimulationConfig {
	clone := *c
	return &clone
}

// String returns a human-readable representation of the configuration
func (c *SimulationConfig) String() string {
	return fmt.Sprintf(`Simulation Configuration:
  Name: %s
  Description: %s
  Time Slots: %d
  Area Size: %.0f m
  Seed: %d

IoT Devices:
  Count: %d
  Mobility Step: %.1f m
  Transmission Power: %.2f W
  CPU Frequency: %.2g Hz
  Nominal Data Rate: %.2g bps

UAVs:
  Count: %d
  Flying Height: %.1f m
  Max Speed: %.1f m/slot
  Coverage Radius: %.1f m
  CPU Frequency: %.2g Hz

Physics:
  Noise Power: %.2g W
  Bandwidth: %.2g Hz
  Path Loss Exponent: %.1f

Tasks:
  Probability: %.2f
  Data Size: %.2f-%.2f Mb
  Computation Intensity: %.0f-%.0f cycles/bit
  Deadline: %d-%d slots

Performance:
  Decision Workers: %d
  Worker Pool Size: %d

Logging:
  Console Level: %s
  Report Enabled: %t`,
		c.Simulation.Name,
		c.Simulation.Description,
		c.Simulation.TimeSlots,
		c.Simulation.AreaSize,
		c.Simulation.Seed,
		c.IoT.DeviceCount,
		c.IoT.MobilityStep,
		c.IoT.TransmissionPower,
		c.IoT.CPUFrequency,
		c.IoT.DataRate,
		c.UAV.Count,
		c.UAV.FlyingHeight,
		c.UAV.MaxSpeed,
		c.UAV.CoverageRadius,
		c.UAV.CPUFrequency,
		c.Physics.NoisePower,
		c.Physics.Bandwidth,
		c.Physics.PathLossExponent,
		c.Tasks.Probability,
		c.Tasks.DataSize.Min,
		c.Tasks.DataSize.Max,
		c.Tasks.ComputationIntensity.Min,
		c.Tasks.ComputationIntensity.Max,
		c.Tasks.DeadlineSlots.Min,
		c.Tasks.DeadlineSlots.Max,
		c.Performance.DecisionWorkers,
		c.Performance.WorkerPoolSize,
		c.Logging.ConsoleLevel,
		c.Logging.EnableReport,
	)
}

// GetDefaultConfig returns the reference scenario configuration
func GetDefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Simulation: SimulationSettings{
			Name:        "uav-offloading",
			Description: "UAV-assisted IoT task offloading simulation",
			TimeSlots:   100,
			AreaSize:    1000,
		},

		IoT: IoTConfig{
			DeviceCount:       300,
			MobilityStep:      5,
			TransmissionPower: 0.5,
			Kappa:             1e-5,
			CPUFrequency:      1e9,
			DataRate:          1e6,
		},

		UAV: UAVConfig{
			Count:          5,
			FlyingHeight:   100,
			MaxSpeed:       50,
			CoverageRadius: 200,
			Kappa:          1e-5,
			CPUFrequency:   5e9,
		},

		Physics: PhysicsConfig{
			NoisePower:       1e-10,
			Bandwidth:        1e6,
			PathLossExponent: 2,
		},

		Tasks: TaskConfig{
			Probability: 0.5,
			DataSize: Range{
				Min: 0.5,
				Max: 5.2,
			},
			ComputationIntensity: Range{
				Min: 500,
				Max: 1000,
			},
			DeadlineSlots: IntRange{
				Min: 1,
				Max: 5,
			},
		},

		Performance: PerformanceConfig{
			DecisionWorkers: 1,
			WorkerPoolSize:  4,
		},

		Logging: LoggingConfig{
			ConsoleLevel: "info",
			EnableReport: false,
			ReportPath:   "./results/",
			TopDevices:   10,
		},

		Sweep: SweepConfig{
			From: 300,
			To:   1000,
			Step: 100,
		},
	}
}
