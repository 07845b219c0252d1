package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// manifest records one fit: what went in, what came out and the
// parameters that produced it.
type manifest struct {
	RunID      string    `yaml:"run_id"`
	Version    string    `yaml:"version"`
	StartedAt  time.Time `yaml:"started_at"`
	Duration   string    `yaml:"duration"`
	Input      string    `yaml:"input"`
	Output     string    `yaml:"output"`
	Samples    int       `yaml:"samples"`
	Features   int       `yaml:"features"`
	Epochs     int       `yaml:"epochs"`
	Edges      int       `yaml:"edges"`
	A          float64   `yaml:"a"`
	B          float64   `yaml:"b"`
	Normalized bool      `yaml:"normalized"`
	Settings   settings  `yaml:"settings"`
}

func writeManifest(path string, m manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
