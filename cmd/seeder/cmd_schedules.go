package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/spf13/cobra"
)

func newCleanSchedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean-schedules",
		Short: "Drop people whose trips don't chain from one place to the next",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")

			in, err := loadInputs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer in.Close()

			before := len(in.scenario.People)
			dropped, err := in.scenario.RemoveWeirdSchedules(in.net, log.Default())
			if err != nil {
				return err
			}
			if err := in.store(cmd.Context(), cfg, out, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("store %q: %w", in.scenario.Name, err)
			}
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: dropped %d of %d people\n", in.scenario.Name, dropped, before)
			}
			return nil
		},
	}
	cmd.Flags().String("out", "", "Write the result to this file ('-' for stdout) instead of where it came from")
	return cmd
}

func newRepeatDaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repeat-days",
		Short: "Repeat a scenario's one-day schedule over several days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("days") {
				cfg.RepeatDays, _ = cmd.Flags().GetInt("days")
			}
			if cmd.Flags().Changed("avoid-inbound") {
				cfg.AvoidInboundTrips, _ = cmd.Flags().GetBool("avoid-inbound")
			}
			out, _ := cmd.Flags().GetString("out")

			in, err := loadInputs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer in.Close()

			if err := in.scenario.RepeatDays(cfg.RepeatDays, cfg.AvoidInboundTrips); err != nil {
				return err
			}
			if err := in.store(cmd.Context(), cfg, out, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("store %q: %w", in.scenario.Name, err)
			}
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "stored %q\n", in.scenario.Name)
			}
			return nil
		},
	}
	cmd.Flags().Int("days", 1, "Number of days (overrides REPEAT_DAYS)")
	cmd.Flags().Bool("avoid-inbound", false, "Don't repeat vehicles appearing from off-map (overrides AVOID_INBOUND_TRIPS)")
	cmd.Flags().String("out", "", "Write the result to this file ('-' for stdout) instead of where it came from")
	return cmd
}

func newParkedCarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parked-cars",
		Short: "Count the cars that must start parked at each building",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			in, err := loadInputs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer in.Close()

			counts, err := in.scenario.CountParkedCarsPerBuilding()
			if err != nil {
				return err
			}
			type row struct {
				Building int `json:"building"`
				Cars     int `json:"cars"`
			}
			rows := make([]row, 0, len(counts))
			total := 0
			for b, n := range counts {
				rows = append(rows, row{Building: int(b), Cars: n})
				total += n
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].Building < rows[j].Building })

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "Building #%d\t%d\n", r.Building, r.Cars)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d parked cars across %d buildings\n", total, len(rows))
			return nil
		},
	}
}
