package simulation

import "fmt"

// SimulationConfig is the simulation.yaml descriptor a simulation ships with
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter defines a configurable parameter for a simulation
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// ParameterTypes are the parameter types the CLI can prompt for and parse
var ParameterTypes = []string{"integer", "float", "string", "boolean"}

// Validate checks that the descriptor is named and its parameters are
// uniquely named with a supported type
func (c *SimulationConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("simulation config has no name")
	}

	seen := make(map[string]bool, len(c.Parameters))
	for i, p := range c.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameter %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true

		if !supportedType(p.Type) {
			return fmt.Errorf("parameter %q has unsupported type %q", p.Name, p.Type)
		}
	}
	return nil
}

func supportedType(t string) bool {
	for _, known := range ParameterTypes {
		if t == known {
			return true
		}
	}
	return false
}
