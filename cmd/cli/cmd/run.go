package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/uav-offload-sim/pkg/logger"
	"github.com/picogrid/uav-offload-sim/pkg/simulation"
	"github.com/picogrid/uav-offload-sim/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/uav-offload-sim/cmd/uav-offloading/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Run a simulation interactively or with specified parameters.

Parameters are prompted for on a terminal. Otherwise they are read from
UAVSIM_<NAME> environment variables or fall back to their defaults.`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	runCmd.Flags().String("sim-config", "", "scenario configuration file (YAML)")
	runCmd.Flags().String("report", "", "write a run report into this directory")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	simName, err := selectSimulation(cmd, simInfos)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	info, err := utils.FindSimulation(simInfos, simName)
	if err != nil {
		return fmt.Errorf("simulation configuration not found for %s", simName)
	}

	params, err := collectParameters(cmd, info.Config.Parameters)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	logger.Progressf("Configuring %s...", sim.Name())
	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Warn("Received interrupt signal, stopping simulation...")
			if err := sim.Stop(); err != nil {
				logger.Errorf("Failed to stop simulation: %v", err)
			}
		case <-ctx.Done():
		}
	}()

	logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
	if err := sim.Run(ctx); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	logger.Success("Simulation completed successfully")
	return nil
}

// collectParameters merges the parameter sources. A parameters file wins
// over prompts. With --sim-config the scenario file provides the values
// and nothing is prompted.
func collectParameters(cmd *cobra.Command, declared []simulation.Parameter) (map[string]interface{}, error) {
	params := make(map[string]interface{})

	simConfig, _ := cmd.Flags().GetString("sim-config")
	paramsFile, _ := cmd.Flags().GetString("params")

	switch {
	case paramsFile != "":
		loaded, err := utils.LoadParameterFile(paramsFile)
		if err != nil {
			return nil, err
		}
		for k, v := range loaded {
			params[k] = v
		}
	case simConfig == "":
		prompted, err := utils.PromptForParameters(declared)
		if err != nil {
			return nil, err
		}
		for k, v := range prompted {
			params[k] = v
		}
	}

	if simConfig != "" {
		params["config_path"] = simConfig
	}

	if reportDir, _ := cmd.Flags().GetString("report"); reportDir != "" {
		params["enable_report"] = true
		params["report_path"] = reportDir
	}

	return params, nil
}

func selectSimulation(cmd *cobra.Command, simInfos []utils.SimulationInfo) (string, error) {
	// Check if simulation is specified via flag
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		return simName, nil
	}

	if len(simInfos) == 0 {
		return "", fmt.Errorf("no simulations found")
	}

	if len(simInfos) == 1 || !utils.IsInteractive() {
		return simInfos[0].Config.Name, nil
	}

	// Build options for selection
	options := make([]string, len(simInfos))
	descriptions := make(map[string]string)

	for i, info := range simInfos {
		options[i] = info.Config.Name
		descriptions[info.Config.Name] = info.Config.Description
	}

	// Interactive selection
	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
