package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scenario-seeder/internal/metrics"
	"scenario-seeder/internal/publisher"
	"scenario-seeder/internal/rng"
	"scenario-seeder/internal/scenario"
	"scenario-seeder/internal/sim"
)

func newInstantiateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instantiate",
		Short: "Seed a scenario into the engine and publish it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("repeat-days") {
				cfg.RepeatDays, _ = cmd.Flags().GetInt("repeat-days")
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			// Root context with cancellation on SIGINT/SIGTERM
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			in, err := loadInputs(ctx, cfg)
			if err != nil {
				return err
			}
			defer in.Close()

			var mcol *metrics.Collector
			if cfg.MetricsAddr != "" {
				mcol = metrics.NewCollector(cfg.Seed)
				srv := mcol.Serve(cfg.MetricsAddr)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			if cfg.RemoveWeirdSchedules {
				dropped, err := in.scenario.RemoveWeirdSchedules(in.net, log.Default())
				if err != nil {
					return err
				}
				if mcol != nil {
					mcol.PeopleDropped.Add(float64(dropped))
				}
			}
			if cfg.RepeatDays > 1 {
				if err := in.scenario.RepeatDays(cfg.RepeatDays, cfg.AvoidInboundTrips); err != nil {
					return err
				}
			}

			pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
			if err != nil {
				return fmt.Errorf("nats error: %w", err)
			}
			defer pub.Close()

			eng := sim.NewManager(in.net, pub, mcol, log.Default())
			report, err := in.scenario.Instantiate(ctx, eng, in.net, rng.New(cfg.Seed), scenario.Options{Metrics: wrapScenarioMetrics(mcol)})
			if err != nil {
				return fmt.Errorf("instantiate %q: %w", in.scenario.Name, err)
			}
			if mcol != nil {
				mcol.InstantiateDuration.Observe(report.Duration.Seconds())
			}
			if err := pub.Flush(10 * time.Second); err != nil {
				return fmt.Errorf("nats flush: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d people, %d trips (%d dropped), %d/%d parked cars, %d bus routes\n",
					in.scenario.Name, report.People, report.TripsFlushed, report.TripsDropped,
					report.Parking.Seeded, report.Parking.Requested, report.BusRoutesSeeded)
			}

			// Keep /metrics up for scraping until interrupted.
			if mcol != nil {
				log.Printf("instantiation done; serving metrics until interrupted")
				<-ctx.Done()
			}
			return nil
		},
	}
	cmd.Flags().Int("repeat-days", 1, "Repeat the scenario's schedule for this many days (overrides REPEAT_DAYS)")
	return cmd
}
