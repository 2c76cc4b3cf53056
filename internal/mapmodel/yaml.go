package mapmodel

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a map fixture.
type File struct {
	Name          string         `yaml:"name"`
	Intersections []Intersection `yaml:"intersections"`
	Roads         []Road         `yaml:"roads"`
	Lanes         []Lane         `yaml:"lanes"`
	Buildings     []Building     `yaml:"buildings"`
	BusRoutes     []BusRoute     `yaml:"bus_routes"`
}

func LoadYAML(r io.Reader) (*Network, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("map has no name")
	}
	return NewNetwork(f.Name, f.Intersections, f.Roads, f.Lanes, f.Buildings, f.BusRoutes)
}

func LoadYAMLFile(path string) (*Network, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	n, err := LoadYAML(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
