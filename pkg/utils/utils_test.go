package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/picogrid/uav-offload-sim/pkg/simulation"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestDiscoverSimulationsIn(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "zeta", "simulation.yaml"), "name: Zeta\ndescription: last\n")
	writeFile(t, filepath.Join(dir, "alpha", "simulation.yaml"), "name: Alpha\nparameters:\n  - name: device_count\n    type: integer\n    default: 10\n")
	writeFile(t, filepath.Join(dir, "broken", "simulation.yaml"), "name: [unterminated\n")
	writeFile(t, filepath.Join(dir, "untyped", "simulation.yaml"), "name: Untyped\nparameters:\n  - name: timeout\n    type: duration\n")
	writeFile(t, filepath.Join(dir, "other", "config.yaml"), "name: Ignored\n")

	sims, err := DiscoverSimulationsIn(dir)
	if err != nil {
		t.Fatalf("Discovery failed: %v", err)
	}

	if len(sims) != 2 {
		t.Fatalf("Expected 2 simulations, got %d", len(sims))
	}

	if sims[0].Config.Name != "Alpha" || sims[1].Config.Name != "Zeta" {
		t.Errorf("Expected simulations sorted by name, got %s, %s", sims[0].Config.Name, sims[1].Config.Name)
	}

	if len(sims[0].Config.Parameters) != 1 || sims[0].Config.Parameters[0].Name != "device_count" {
		t.Errorf("Expected Alpha to declare device_count, got %+v", sims[0].Config.Parameters)
	}

	found, err := FindSimulation(sims, "Zeta")
	if err != nil || found.Path != filepath.Join(dir, "zeta") {
		t.Errorf("Expected to find Zeta in its directory, got %+v, %v", found, err)
	}

	if _, err := FindSimulation(sims, "Missing"); err == nil {
		t.Errorf("Expected an error for an unknown simulation")
	}
}

func TestDiscoverRepositorySimulation(t *testing.T) {
	sims, err := DiscoverSimulationsIn(filepath.Join("..", "..", "cmd"))
	if err != nil {
		t.Fatalf("Discovery failed: %v", err)
	}

	if _, err := FindSimulation(sims, "UAV Task Offloading"); err != nil {
		t.Errorf("Expected the offloading simulation to be discoverable: %v", err)
	}
}

func TestResolveParameters(t *testing.T) {
	params := []simulation.Parameter{
		{Name: "device_count", Type: "integer", Default: 300, Required: true, Min: 0, Max: 5000},
		{Name: "enable_report", Type: "boolean", Default: false},
		{Name: "label", Type: "string"},
	}

	t.Setenv("UAVSIM_DEVICE_COUNT", "450")

	values, err := ResolveParameters(params)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if values["device_count"] != 450 {
		t.Errorf("Expected device_count 450 from the environment, got %v", values["device_count"])
	}

	if values["enable_report"] != false {
		t.Errorf("Expected default enable_report, got %v", values["enable_report"])
	}

	if _, ok := values["label"]; ok {
		t.Errorf("Expected optional parameter without default to be omitted")
	}

	t.Setenv("UAVSIM_DEVICE_COUNT", "9000")
	if _, err := ResolveParameters(params); err == nil {
		t.Errorf("Expected an error for an out-of-range value")
	}

	t.Setenv("UAVSIM_DEVICE_COUNT", "many")
	if _, err := ResolveParameters(params); err == nil {
		t.Errorf("Expected an error for a non-numeric value")
	}
}

func TestResolveParametersRequired(t *testing.T) {
	params := []simulation.Parameter{{Name: "uav_count", Type: "integer", Required: true}}

	if _, err := ResolveParameters(params); err == nil {
		t.Errorf("Expected an error for a required parameter without value")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		typ      string
		expected interface{}
		hasErr   bool
	}{
		{"integer", "42", "integer", 42, false},
		{"float", "0.75", "float", 0.75, false},
		{"boolean", "true", "boolean", true, false},
		{"string", "hello", "string", "hello", false},
		{"bad integer", "4.2", "integer", nil, true},
		{"unsupported", "5m", "duration", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.raw, simulation.Parameter{Name: tt.name, Type: tt.typ})
			if tt.hasErr {
				if err == nil {
					t.Errorf("Expected an error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsInteractiveSkip(t *testing.T) {
	t.Setenv("UAVSIM_SKIP_PROMPTS", "true")
	if IsInteractive() {
		t.Errorf("Expected prompts to be skipped")
	}
}

func TestLoadParameterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	writeFile(t, path, "device_count: 500\nuav_count: 3\nenable_report: true\n")

	params, err := LoadParameterFile(path)
	if err != nil {
		t.Fatalf("Failed to load parameters: %v", err)
	}

	if params["device_count"] != 500 || params["uav_count"] != 3 || params["enable_report"] != true {
		t.Errorf("Unexpected parameters: %v", params)
	}
}
