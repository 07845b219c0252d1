package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	umap "github.com/nozzle/stepumap"
)

// settings is the YAML form of the UMAP configuration.
type settings struct {
	Neighbors          int     `yaml:"n_neighbors"`
	Components         int     `yaml:"n_components"`
	Metric             string  `yaml:"metric"`
	MinDist            float64 `yaml:"min_dist"`
	Spread             float64 `yaml:"spread"`
	A                  float64 `yaml:"a,omitempty"`
	B                  float64 `yaml:"b,omitempty"`
	Epochs             int     `yaml:"n_epochs"`
	LearningRate       float64 `yaml:"learning_rate"`
	NegativeSampleRate float64 `yaml:"negative_sample_rate"`
	RepulsionStrength  float64 `yaml:"repulsion_strength"`
	Init               string  `yaml:"init"`
	LocalConnectivity  float64 `yaml:"local_connectivity"`
	Bandwidth          float64 `yaml:"bandwidth"`
	SetOpMixRatio      float64 `yaml:"set_op_mix_ratio"`
	Seed               int64   `yaml:"seed"`
	Workers            int     `yaml:"workers"`
	Verbose            bool    `yaml:"verbose"`
}

func defaultSettings() settings {
	c := umap.DefaultConfig()
	return settings{
		Neighbors:          c.NNeighbors,
		Components:         c.NComponents,
		Metric:             c.Metric,
		MinDist:            c.MinDist,
		Spread:             c.Spread,
		A:                  c.A,
		B:                  c.B,
		Epochs:             c.NEpochs,
		LearningRate:       c.LearningRate,
		NegativeSampleRate: c.NegativeSampleRate,
		RepulsionStrength:  c.RepulsionStrength,
		Init:               c.Init,
		LocalConnectivity:  c.LocalConnectivity,
		Bandwidth:          c.Bandwidth,
		SetOpMixRatio:      c.SetOpMixRatio,
		Seed:               c.Seed,
		Workers:            c.NumWorkers,
		Verbose:            c.Verbose,
	}
}

// loadSettings reads a YAML file over the defaults. Keys missing from the
// file keep their default values.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return s, nil
}

// applyFlags overrides settings with every flag set on the command line.
func (s *settings) applyFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "neighbors":
			s.Neighbors, err = flags.GetInt(f.Name)
		case "components":
			s.Components, err = flags.GetInt(f.Name)
		case "metric":
			s.Metric, err = flags.GetString(f.Name)
		case "min-dist":
			s.MinDist, err = flags.GetFloat64(f.Name)
		case "spread":
			s.Spread, err = flags.GetFloat64(f.Name)
		case "a":
			s.A, err = flags.GetFloat64(f.Name)
		case "b":
			s.B, err = flags.GetFloat64(f.Name)
		case "epochs":
			s.Epochs, err = flags.GetInt(f.Name)
		case "init":
			s.Init, err = flags.GetString(f.Name)
		case "seed":
			s.Seed, err = flags.GetInt64(f.Name)
		case "workers":
			s.Workers, err = flags.GetInt(f.Name)
		case "verbose":
			s.Verbose, err = flags.GetBool(f.Name)
		}
	})
	return err
}

func (s settings) toConfig() umap.Config {
	c := umap.DefaultConfig()
	c.NNeighbors = s.Neighbors
	c.NComponents = s.Components
	c.Metric = s.Metric
	c.MinDist = s.MinDist
	c.Spread = s.Spread
	c.A = s.A
	c.B = s.B
	c.NEpochs = s.Epochs
	c.LearningRate = s.LearningRate
	c.NegativeSampleRate = s.NegativeSampleRate
	c.RepulsionStrength = s.RepulsionStrength
	c.Init = s.Init
	c.LocalConnectivity = s.LocalConnectivity
	c.Bandwidth = s.Bandwidth
	c.SetOpMixRatio = s.SetOpMixRatio
	c.Seed = s.Seed
	c.NumWorkers = s.Workers
	c.Verbose = s.Verbose
	return c
}
