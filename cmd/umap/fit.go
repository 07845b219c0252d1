package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	umap "github.com/nozzle/stepumap"
	"github.com/nozzle/stepumap/distance"
	"github.com/nozzle/stepumap/initial"
)

func newFitCmd() *cobra.Command {
	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Embed a CSV file",
		Long: `Embed every row of --input and write the coordinates to --output.

Settings come from the defaults, then the optional --config YAML file, then
any flag given explicitly on the command line.`,
		RunE: runFit,
	}

	f := fitCmd.Flags()
	f.String("input", "", "Input CSV file (required)")
	f.String("output", "embedding.csv", "Output CSV file")
	f.String("config", "", "YAML file with UMAP settings")
	f.String("manifest", "", "Write a YAML run manifest to this file")
	f.Int("neighbors", 15, "Number of neighbors for k-NN")
	f.Int("components", 2, "Number of output dimensions")
	f.String("metric", "euclidean", "Distance metric: "+strings.Join(distance.Names(), ", "))
	f.Float64("min-dist", 0.1, "Minimum distance between points")
	f.Float64("spread", 1.0, "Spread of embedded points")
	f.Float64("a", 0, "Kernel parameter a (0 = fit from min-dist and spread)")
	f.Float64("b", 0, "Kernel parameter b (0 = fit from min-dist and spread)")
	f.Int("epochs", 0, "Number of training epochs (0 = auto)")
	f.String("init", "spectral", "Initialization: spectral or random")
	f.Int64("seed", 42, "Random seed")
	f.Int("workers", 0, "Parallel workers (0 = auto)")
	f.Bool("normalize", false, "Scale every output dimension to [0, 1]")
	f.Bool("verbose", false, "Verbose output")
	_ = fitCmd.MarkFlagRequired("input")

	return fitCmd
}

func runFit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	inputFile, _ := flags.GetString("input")
	outputFile, _ := flags.GetString("output")
	configFile, _ := flags.GetString("config")
	manifestFile, _ := flags.GetString("manifest")
	normalize, _ := flags.GetBool("normalize")

	settings := defaultSettings()
	if configFile != "" {
		loaded, err := loadSettings(configFile)
		if err != nil {
			return err
		}
		settings = loaded
	}
	if err := settings.applyFlags(flags); err != nil {
		return err
	}

	logger := log.New(cmd.ErrOrStderr(), "umap: ", log.LstdFlags)

	data, err := loadCSV(inputFile)
	if err != nil {
		return fmt.Errorf("loading data: %w", err)
	}
	if settings.Verbose {
		logger.Printf("loaded %d samples with %d features", len(data), len(data[0]))
	}

	config := settings.toConfig()
	config.Logger = logger
	if settings.Verbose {
		config.ProgressCallback = func(epoch, total int) {
			if epoch%10 == 0 || epoch == total {
				logger.Printf("epoch %d/%d", epoch, total)
			}
		}
	}

	started := time.Now()
	model := umap.New(config)
	if err := model.Fit(cmd.Context(), data); err != nil {
		return err
	}
	embedding := model.Embedding()
	if normalize {
		initial.NormalizeCoordsTo01(embedding)
	}

	if err := saveCSV(outputFile, embedding); err != nil {
		return fmt.Errorf("saving output: %w", err)
	}
	if settings.Verbose {
		logger.Printf("saved embedding to %s", outputFile)
	}

	if manifestFile == "" {
		return nil
	}
	a, b, err := model.Params()
	if err != nil {
		return err
	}
	g, err := model.Graph()
	if err != nil {
		return err
	}
	m := manifest{
		RunID:      uuid.New().String(),
		Version:    version,
		StartedAt:  started.UTC(),
		Duration:   time.Since(started).String(),
		Input:      inputFile,
		Output:     outputFile,
		Samples:    len(data),
		Features:   len(data[0]),
		Epochs:     model.NEpochs(),
		Edges:      g.NNZ,
		A:          a,
		B:          b,
		Settings:   settings,
		Normalized: normalize,
	}
	if err := writeManifest(manifestFile, m); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if settings.Verbose {
		logger.Printf("run %s recorded in %s", m.RunID, manifestFile)
	}
	return nil
}
