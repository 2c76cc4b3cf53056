package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scenario-seeder/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seeder",
		Short: "Instantiate travel demand scenarios into the simulation engine",
		Long: `seeder turns a scenario (people and their trips) into concrete vehicles,
initially parked cars and resolved trips for a road network, and publishes
them over NATS.

The map and scenario come from Postgres (MAP_NAME, SCENARIO_NAME) or from
files (MAP_FILE, SCENARIO_FILE). Settings are read from .env and the
environment; flags override them.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("map", "", "Map name (overrides MAP_NAME)")
	rootCmd.PersistentFlags().String("scenario", "", "Scenario name (overrides SCENARIO_NAME)")
	rootCmd.PersistentFlags().String("map-file", "", "YAML road network (overrides MAP_FILE)")
	rootCmd.PersistentFlags().String("scenario-file", "", "JSON scenario (overrides SCENARIO_FILE)")
	rootCmd.PersistentFlags().Uint64("seed", 0, "RNG seed (overrides RNG_SEED)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newInstantiateCmd(),
		newCleanSchedulesCmd(),
		newRepeatDaysCmd(),
		newParkedCarsCmd(),
		newListCmd(),
	)

	return rootCmd
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("map") {
		cfg.MapName, _ = flags.GetString("map")
	}
	if flags.Changed("scenario") {
		cfg.ScenarioName, _ = flags.GetString("scenario")
	}
	if flags.Changed("map-file") {
		cfg.MapFile, _ = flags.GetString("map-file")
	}
	if flags.Changed("scenario-file") {
		cfg.ScenarioFile, _ = flags.GetString("scenario-file")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	return cfg, nil
}
