package cmd

import (
	"github.com/picogrid/uav-offload-sim/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	closeLogFile func() error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "uavsim",
	Short: "UAV task offloading simulation CLI",
	Long: `uavsim runs discrete-time simulations of UAVs serving as mobile
edge-computing relays for IoT devices, and sweeps them over device counts
to compare energy efficiency.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.uavsim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-file", "", "append an uncolored copy of the log to this file")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sweepCmd)
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()

	if closeLogFile != nil {
		if closeErr := closeLogFile(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory
		viper.AddConfigPath("$HOME/.uavsim")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("uavsim")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in
	_ = viper.ReadInConfig()
}

func setupLogging() error {
	logger.SetLevel(logger.ParseLevel(viper.GetString("log_level")))
	logger.SetNoColor(viper.GetBool("no_color"))

	if path := viper.GetString("log_file"); path != "" {
		closer, err := logger.SetLogFile(path)
		if err != nil {
			return err
		}
		closeLogFile = closer
	}

	return nil
}
