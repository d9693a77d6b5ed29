package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/picogrid/uav-offload-sim/cmd/uav-offloading/simulation"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
)

// Runs one scenario straight from a config file. Use 'uavsim run' for
// prompts, parameter files and reports on demand.
func main() {
	params := map[string]interface{}{}
	if len(os.Args) > 1 {
		params["config_path"] = os.Args[1]
	}

	sim := simulation.NewOffloadingSimulation()
	if err := sim.Configure(params); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sim.Run(ctx); err != nil {
		logger.Errorf("Simulation failed: %v", err)
		stop()
		os.Exit(1)
	}

	metrics := sim.Metrics()
	logger.LogSection("Results")
	logger.LogKeyValue("Total energy (J)", fmt.Sprintf("%.6g", metrics[simulation.MetricTotalEnergy]))
	logger.LogKeyValue("System utility (Mb)", fmt.Sprintf("%.6g", metrics[simulation.MetricSystemUtility]))
	logger.LogKeyValue("Energy efficiency (Mb/J)", fmt.Sprintf("%.6g", metrics[simulation.MetricEnergyEfficiency]))
}
