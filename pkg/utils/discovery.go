package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/picogrid/uav-offload-sim/pkg/logger"
	"github.com/picogrid/uav-offload-sim/pkg/simulation"
	"gopkg.in/yaml.v3"
)

// SimulationInfo contains information about a discovered simulation
type SimulationInfo struct {
	Path   string
	Config simulation.SimulationConfig
}

// DiscoverSimulations finds all simulations under the project's cmd directory
func DiscoverSimulations() ([]SimulationInfo, error) {
	rootDir, err := findProjectRoot()
	if err != nil {
		return nil, err
	}

	return DiscoverSimulationsIn(filepath.Join(rootDir, "cmd"))
}

// DiscoverSimulationsIn finds every simulation.yaml below dir, sorted by name
func DiscoverSimulationsIn(dir string) ([]SimulationInfo, error) {
	var simulations []SimulationInfo

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || d.Name() != "simulation.yaml" {
			return nil
		}

		simInfo, err := loadSimulationConfig(path)
		if err != nil {
			// A broken descriptor should not hide the others
			logger.Warnf("Failed to load %s: %v", path, err)
			return nil
		}
		simulations = append(simulations, *simInfo)

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan for simulations: %w", err)
	}

	sort.Slice(simulations, func(i, j int) bool {
		return simulations[i].Config.Name < simulations[j].Config.Name
	})

	return simulations, nil
}

// FindSimulation returns the discovered simulation with the given name
func FindSimulation(simulations []SimulationInfo, name string) (*SimulationInfo, error) {
	for i := range simulations {
		if simulations[i].Config.Name == name {
			return &simulations[i], nil
		}
	}
	return nil, fmt.Errorf("simulation %q not found", name)
}

// loadSimulationConfig loads a simulation configuration from a file
func loadSimulationConfig(path string) (*SimulationInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	var config simulation.SimulationConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config %s: %w", path, err)
	}

	return &SimulationInfo{
		Path:   filepath.Dir(path),
		Config: config,
	}, nil
}

// LoadParameterFile reads a YAML map of parameter values, as passed with
// `run --params`
func LoadParameterFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}

	params := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse parameters file: %w", err)
	}

	return params, nil
}

// findProjectRoot finds the project root by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
