package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"scenario-seeder/internal/db"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scenarios stored for a map",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if cfg.DatabaseURL == "" {
				return errors.New("no database configured: set DATABASE_URL or PGDATABASE")
			}
			if cfg.MapName == "" {
				return errors.New("MAP_NAME is required to list scenarios")
			}

			sqlDB, name, err := db.OpenMap(cmd.Context(), cfg.DatabaseURL, cfg.MapName)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			log.Printf("using database %q for map %q", name, cfg.MapName)

			if err := db.EnsureSchema(cmd.Context(), sqlDB); err != nil {
				return err
			}
			names, err := db.ListScenarios(cmd.Context(), sqlDB, cfg.MapName)
			if err != nil {
				return err
			}

			if jsonOut {
				if names == nil {
					names = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d scenarios for %s\n", len(names), cfg.MapName)
			return nil
		},
	}
}
