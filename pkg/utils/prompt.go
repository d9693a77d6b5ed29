package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/picogrid/uav-offload-sim/pkg/simulation"
	"golang.org/x/term"
)

// EnvPrefix prefixes the environment variables that answer parameter prompts
const EnvPrefix = "UAVSIM_"

// IsInteractive reports whether prompts can be shown. Prompts are skipped
// when stdin is not a terminal or UAVSIM_SKIP_PROMPTS is true.
func IsInteractive() bool {
	if skip, err := strconv.ParseBool(os.Getenv(EnvPrefix + "SKIP_PROMPTS")); err == nil && skip {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptForParameters prompts the user for simulation parameters, or
// resolves them from the environment and defaults when not interactive
func PromptForParameters(params []simulation.Parameter) (map[string]interface{}, error) {
	if !IsInteractive() {
		return ResolveParameters(params)
	}

	result := make(map[string]interface{})

	for _, param := range params {
		value, err := promptForParameter(param)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		result[param.Name] = value
	}

	return result, nil
}

// ResolveParameters answers every parameter from UAVSIM_<NAME> or its
// default, without prompting
func ResolveParameters(params []simulation.Parameter) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	for _, param := range params {
		if envValue := os.Getenv(envKey(param)); envValue != "" {
			value, err := ParseValue(envValue, param)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s from %s: %w", param.Name, envKey(param), err)
			}
			if err := checkRange(value, param); err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", param.Name, err)
			}
			result[param.Name] = value
			continue
		}

		if param.Default != nil {
			result[param.Name] = param.Default
			continue
		}

		if param.Required {
			return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
		}
	}

	return result, nil
}

func envKey(param simulation.Parameter) string {
	return EnvPrefix + strings.ToUpper(param.Name)
}

// promptForParameter prompts for a single parameter
func promptForParameter(param simulation.Parameter) (interface{}, error) {
	// The environment overrides the declared default
	if envValue := os.Getenv(envKey(param)); envValue != "" {
		if parsed, err := ParseValue(envValue, param); err == nil {
			param.Default = parsed
		}
	}

	switch param.Type {
	case "integer":
		return promptInteger(param)
	case "float":
		return promptFloat(param)
	case "string":
		return promptString(param)
	case "boolean":
		return promptBoolean(param)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

// ParseValue parses a raw string according to the parameter type
func ParseValue(value string, param simulation.Parameter) (interface{}, error) {
	switch param.Type {
	case "integer":
		return strconv.Atoi(value)
	case "float":
		return strconv.ParseFloat(value, 64)
	case "string":
		return value, nil
	case "boolean":
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

// checkRange validates numeric values against the declared bounds
func checkRange(value interface{}, param simulation.Parameter) error {
	switch v := value.(type) {
	case int:
		if param.Min != nil && v < toInt(param.Min) {
			return fmt.Errorf("value must be at least %d", toInt(param.Min))
		}
		if param.Max != nil && v > toInt(param.Max) {
			return fmt.Errorf("value must be at most %d", toInt(param.Max))
		}
	case float64:
		if param.Min != nil && v < toFloat64(param.Min) {
			return fmt.Errorf("value must be at least %g", toFloat64(param.Min))
		}
		if param.Max != nil && v > toFloat64(param.Max) {
			return fmt.Errorf("value must be at most %g", toFloat64(param.Max))
		}
	}
	return nil
}

// rangeValidator rejects input that does not parse or is out of bounds
func rangeValidator(param simulation.Parameter) survey.Validator {
	return func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return nil
		}
		parsed, err := ParseValue(str, param)
		if err != nil {
			return fmt.Errorf("invalid %s: %s", param.Type, str)
		}
		return checkRange(parsed, param)
	}
}

func promptInteger(param simulation.Parameter) (int, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = strconv.Itoa(toInt(param.Default))
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var result string
	validator := survey.ComposeValidators(survey.Required, rangeValidator(param))
	if err := survey.AskOne(prompt, &result, survey.WithValidator(validator)); err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(result)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %w", err)
	}

	return value, nil
}

func promptFloat(param simulation.Parameter) (float64, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var result string
	validator := survey.ComposeValidators(survey.Required, rangeValidator(param))
	if err := survey.AskOne(prompt, &result, survey.WithValidator(validator)); err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(result, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}

	return value, nil
}

func promptString(param simulation.Parameter) (string, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	if len(param.Options) > 0 {
		prompt := &survey.Select{
			Message: param.Description,
			Options: param.Options,
			Default: defaultStr,
		}

		var result string
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return result, nil
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var opts []survey.AskOpt
	if param.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	var result string
	if err := survey.AskOne(prompt, &result, opts...); err != nil {
		return "", err
	}

	return result, nil
}

func promptBoolean(param simulation.Parameter) (bool, error) {
	defaultBool := false
	if param.Default != nil {
		switch v := param.Default.(type) {
		case bool:
			defaultBool = v
		case string:
			defaultBool, _ = strconv.ParseBool(v)
		}
	}

	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}

	return result, nil
}

func toInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
