package simulation

import (
	"fmt"
	"math"
)

// Params holds the parsed run parameters
type Params struct {
	// ConfigPath points to a YAML scenario file, empty for the default search
	ConfigPath string

	// Overrides are applied on top of the loaded configuration
	Overrides map[string]interface{}
}

type intParam struct {
	name     string
	min, max int
}

// Bounds match simulation.yaml
var intParams = []intParam{
	{name: "device_count", min: 0, max: 5000},
	{name: "uav_count", min: 0, max: 100},
	{name: "time_slots", min: 0, max: 100000},
	{name: "decision_workers", min: 1, max: 256},
}

// ValidateAndParse validates the raw parameters from prompts, the
// environment or a parameters file
func ValidateAndParse(params map[string]interface{}) (*Params, error) {
	parsed := &Params{
		Overrides: make(map[string]interface{}),
	}

	for _, p := range intParams {
		v, ok := params[p.name]
		if !ok {
			continue
		}
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer", p.name)
		}
		if n < p.min || n > p.max {
			return nil, fmt.Errorf("%s must be between %d and %d", p.name, p.min, p.max)
		}
		parsed.Overrides[p.name] = n
	}

	if v, ok := params["seed"]; ok {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("seed must be an integer")
		}
		parsed.Overrides["seed"] = int64(n)
	}

	if v, ok := params["task_probability"]; ok {
		f, err := toFloat(v)
		if err != nil || f < 0 || f > 1 {
			return nil, fmt.Errorf("task_probability must be a number between 0 and 1")
		}
		parsed.Overrides["task_probability"] = f
	}

	for _, name := range []string{"area_size", "coverage_radius", "max_speed"} {
		v, ok := params[name]
		if !ok {
			continue
		}
		f, err := toFloat(v)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("%s must be a positive number", name)
		}
		parsed.Overrides[name] = f
	}

	if v, ok := params["enable_report"]; ok {
		enable, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("enable_report must be a boolean")
		}
		parsed.Overrides["enable_report"] = enable
	}

	for _, name := range []string{"report_path", "log_level"} {
		if v, ok := params[name]; ok {
			s, isString := v.(string)
			if !isString {
				return nil, fmt.Errorf("%s must be a string", name)
			}
			parsed.Overrides[name] = s
		}
	}

	if v, ok := params["config_path"]; ok {
		s, isString := v.(string)
		if !isString {
			return nil, fmt.Errorf("config_path must be a string")
		}
		parsed.ConfigPath = s
	}

	return parsed, nil
}

func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%v is not a whole number", val)
		}
		return int(val), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
