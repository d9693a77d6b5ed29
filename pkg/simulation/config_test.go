package simulation

import (
	"strings"
	"testing"
)

func TestSimulationConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SimulationConfig
		wantErr string
	}{
		{
			name: "valid",
			config: SimulationConfig{Name: "Offloading", Parameters: []Parameter{
				{Name: "device_count", Type: "integer"},
				{Name: "enable_report", Type: "boolean"},
			}},
		},
		{
			name:    "missing name",
			config:  SimulationConfig{},
			wantErr: "no name",
		},
		{
			name: "unnamed parameter",
			config: SimulationConfig{Name: "Offloading", Parameters: []Parameter{
				{Type: "integer"},
			}},
			wantErr: "parameter 0 has no name",
		},
		{
			name: "duplicate parameter",
			config: SimulationConfig{Name: "Offloading", Parameters: []Parameter{
				{Name: "seed", Type: "integer"},
				{Name: "seed", Type: "integer"},
			}},
			wantErr: "duplicate parameter",
		},
		{
			name: "unsupported type",
			config: SimulationConfig{Name: "Offloading", Parameters: []Parameter{
				{Name: "timeout", Type: "duration"},
			}},
			wantErr: "unsupported type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
