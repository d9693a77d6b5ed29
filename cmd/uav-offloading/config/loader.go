package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file. Unknown keys are rejected
// so that a misspelled constant does not silently fall back to zero.
func LoadConfig(path string) (*SimulationConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ParseConfig decodes YAML on top of the default configuration, so a file only
// needs the keys it changes
func ParseConfig(data []byte) (*SimulationConfig, error) {
	config := GetDefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from file or returns default, with environment overrides
func LoadConfigOrDefault(path string) (*SimulationConfig, error) {
	var config *SimulationConfig
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			// An explicit path that fails is an error, unlike the search below
			return nil, err
		}
	}

	if config == nil {
		defaultPaths := []string{
			"uav-offloading.yaml",
			filepath.Join("cmd", "uav-offloading", "config.yaml"),
			filepath.Join(".", "config.yaml"),
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				config, err = LoadConfig(p)
				if err == nil {
					break
				}
			}
		}
	}

	if config == nil {
		config = GetDefaultConfig()
	}

	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *SimulationConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies CLI parameter overrides to the configuration
func MergeWithCLIOverrides(config *SimulationConfig, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "device_count":
			if count, ok := value.(int); ok && count >= 0 {
				config.IoT.DeviceCount = count
			}
		case "uav_count":
			if count, ok := value.(int); ok && count >= 0 {
				config.UAV.Count = count
			}
		case "time_slots":
			if slots, ok := value.(int); ok && slots >= 0 {
				config.Simulation.TimeSlots = slots
			}
		case "seed":
			switch seed := value.(type) {
			case int:
				config.Simulation.Seed = int64(seed)
			case int64:
				config.Simulation.Seed = seed
			}
		case "area_size":
			if size, ok := value.(float64); ok && size > 0 {
				config.Simulation.AreaSize = size
			}
		case "coverage_radius":
			if radius, ok := value.(float64); ok && radius > 0 {
				config.UAV.CoverageRadius = radius
			}
		case "max_speed":
			if speed, ok := value.(float64); ok && speed > 0 {
				config.UAV.MaxSpeed = speed
			}
		case "task_probability":
			if prob, ok := value.(float64); ok && prob >= 0 && prob <= 1 {
				config.Tasks.Probability = prob
			}
		case "decision_workers":
			if workers, ok := value.(int); ok && workers > 0 {
				config.Performance.DecisionWorkers = workers
			}
		case "enable_report":
			if enable, ok := value.(bool); ok {
				config.Logging.EnableReport = enable
			}
		case "report_path":
			if path, ok := value.(string); ok && path != "" {
				config.Logging.ReportPath = path
			}
		case "log_level":
			if level, ok := value.(string); ok {
				if valid := matchLevel(level); valid != "" {
					config.Logging.ConsoleLevel = valid
				}
			}
		}
	}
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*SimulationConfig, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment merges config with UAVSIM_* environment variables
func MergeWithEnvironment(config *SimulationConfig) {
	if v := os.Getenv("UAVSIM_DEVICE_COUNT"); v != "" {
		if count, err := strconv.Atoi(v); err == nil && count >= 0 {
			config.IoT.DeviceCount = count
		}
	}

	if v := os.Getenv("UAVSIM_UAV_COUNT"); v != "" {
		if count, err := strconv.Atoi(v); err == nil && count >= 0 {
			config.UAV.Count = count
		}
	}

	if v := os.Getenv("UAVSIM_TIME_SLOTS"); v != "" {
		if slots, err := strconv.Atoi(v); err == nil && slots >= 0 {
			config.Simulation.TimeSlots = slots
		}
	}

	if v := os.Getenv("UAVSIM_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Simulation.Seed = seed
		}
	}

	if v := os.Getenv("UAVSIM_AREA_SIZE"); v != "" {
		if size, err := strconv.ParseFloat(v, 64); err == nil && size > 0 {
			config.Simulation.AreaSize = size
		}
	}

	if v := os.Getenv("UAVSIM_COVERAGE_RADIUS"); v != "" {
		if radius, err := strconv.ParseFloat(v, 64); err == nil && radius > 0 {
			config.UAV.CoverageRadius = radius
		}
	}

	if v := os.Getenv("UAVSIM_TASK_PROBABILITY"); v != "" {
		if prob, err := strconv.ParseFloat(v, 64); err == nil && prob >= 0 && prob <= 1 {
			config.Tasks.Probability = prob
		}
	}

	if v := os.Getenv("UAVSIM_DECISION_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil && workers > 0 {
			config.Performance.DecisionWorkers = workers
		}
	}

	if v := os.Getenv("UAVSIM_WORKER_POOL_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			config.Performance.WorkerPoolSize = size
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if valid := matchLevel(v); valid != "" {
			config.Logging.ConsoleLevel = valid
		}
	}

	if v := os.Getenv("UAVSIM_LOG_FILE"); v != "" {
		config.Logging.LogFile = v
	}

	if v := os.Getenv("UAVSIM_ENABLE_REPORT"); v != "" {
		if enable, err := strconv.ParseBool(v); err == nil {
			config.Logging.EnableReport = enable
		}
	}

	if v := os.Getenv("UAVSIM_REPORT_PATH"); v != "" {
		config.Logging.ReportPath = v
	}

	if v := os.Getenv("UAVSIM_DATABASE_PATH"); v != "" {
		config.Sweep.DatabasePath = v
	}
}

func matchLevel(level string) string {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if strings.ToLower(level) == valid {
			return valid
		}
	}
	return ""
}
