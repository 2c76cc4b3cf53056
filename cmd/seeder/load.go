package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"scenario-seeder/internal/config"
	"scenario-seeder/internal/db"
	"scenario-seeder/internal/mapmodel"
	"scenario-seeder/internal/scenario"
)

// inputs is a loaded map and scenario, plus the database they came from
// when they weren't both read from files.
type inputs struct {
	net      *mapmodel.Network
	scenario *scenario.Scenario
	db       *sql.DB
}

func (in *inputs) Close() {
	if in.db != nil {
		in.db.Close()
	}
}

func loadInputs(ctx context.Context, cfg *config.Config) (*inputs, error) {
	in := &inputs{}
	if cfg.MapFile == "" || cfg.ScenarioFile == "" {
		if cfg.DatabaseURL == "" {
			return nil, errors.New("no database configured: set DATABASE_URL or PGDATABASE, or give both --map-file and --scenario-file")
		}
		if cfg.MapName == "" {
			return nil, errors.New("MAP_NAME is required when reading from the database")
		}
		sqlDB, name, err := db.OpenMap(ctx, cfg.DatabaseURL, cfg.MapName)
		if err != nil {
			return nil, err
		}
		log.Printf("using database %q for map %q", name, cfg.MapName)
		in.db = sqlDB
	}

	var err error
	if cfg.MapFile != "" {
		in.net, err = mapmodel.LoadYAMLFile(cfg.MapFile)
	} else {
		in.net, err = db.LoadNetwork(ctx, in.db, cfg.MapName)
	}
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("load map: %w", err)
	}

	if cfg.ScenarioFile != "" {
		in.scenario, err = readScenarioFile(cfg.ScenarioFile)
	} else {
		if cfg.ScenarioName == "" {
			in.Close()
			return nil, errors.New("SCENARIO_NAME is required when reading from the database")
		}
		in.scenario, err = db.LoadScenario(ctx, in.db, in.net.Name(), cfg.ScenarioName)
	}
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	log.Printf("loaded %q: %d people on map %q", in.scenario.Name, len(in.scenario.People), in.net.Name())
	return in, nil
}

func readScenarioFile(path string) (*scenario.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var s scenario.Scenario
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// store writes an edited scenario back where it came from, or to out when
// given.
func (in *inputs) store(ctx context.Context, cfg *config.Config, out string, stdout io.Writer) error {
	switch {
	case out == "-":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(in.scenario)
	case out != "":
		return writeScenarioFile(out, in.scenario)
	case cfg.ScenarioFile != "":
		return writeScenarioFile(cfg.ScenarioFile, in.scenario)
	}
	if err := db.EnsureSchema(ctx, in.db); err != nil {
		return err
	}
	return db.SaveScenario(ctx, in.db, in.scenario)
}

func writeScenarioFile(path string, s *scenario.Scenario) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
