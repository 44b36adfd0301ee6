package main

import (
	"fmt"
	"os"

	"github.com/swdee/go-boxcluster"
	"github.com/swdee/go-boxcluster/batch"
	"github.com/swdee/go-boxcluster/boxio"
	"github.com/swdee/go-boxcluster/internal/config"
	"github.com/swdee/go-boxcluster/internal/log"
	"github.com/swdee/go-boxcluster/kmeans"
	"github.com/swdee/go-boxcluster/render/raster"
)

func main() {

	// read in configuration from .env, environment and cli flags
	cfg, err := config.Load(os.Args[1:])

	if err != nil {
		// usage has already been printed for flag errors
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := log.New(log.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	repo := &boxio.Repository{
		InputDir:  cfg.InputDir,
		ImageDir:  cfg.ImageDir,
		OutputDir: cfg.OutputDir,
		ImageExt:  cfg.ImageExt,
		Strict:    cfg.Strict,
	}

	units, err := repo.Units(cfg.NumFiles)

	if err != nil {
		logger.WithError(err).Fatal("Error listing units")
	}

	projection, err := boxcluster.ProjectionByName(cfg.Projection)

	if err != nil {
		logger.WithError(err).Fatal("Error selecting projection")
	}

	renderer, err := newRenderer(cfg)

	if err != nil {
		logger.WithError(err).Fatal("Error creating renderer")
	}

	opts := []batch.Option{
		batch.WithLogger(logger),
		batch.WithWorkers(cfg.Workers),
		batch.WithMaxClusters(cfg.MaxClusters),
		batch.WithProjection(projection),
	}

	if renderer != nil {
		opts = append(opts, batch.WithRenderer(renderer))
	}

	factory, err := newClustererFactory(cfg)

	if err != nil {
		logger.WithError(err).Fatal("Error creating clusterer")
	}

	runner := batch.New(repo, factory, opts...)

	logger.WithFields(log.Fields{
		"units":        len(units),
		"max_clusters": cfg.MaxClusters,
		"clusterer":    cfg.Clusterer,
		"renderer":     cfg.Renderer,
	}).Info("Starting batch")

	report, err := runner.Run(units)

	if err != nil {
		logger.WithError(err).Fatal("Error preparing output directory")
	}

	if cfg.ReportPath != "" {
		if err := report.WriteJSON(cfg.ReportPath); err != nil {
			logger.WithError(err).Error("Error writing report")
		}
	}

	// display annotated photos until a key is pressed
	if cfg.Show {
		if err := show(report.Annotated()); err != nil {
			logger.WithError(err).Warn("Error displaying photos")
		}
	}

	if report.Failed > 0 {
		os.Exit(1)
	}
}

// newClustererFactory returns a factory for the configured clustering
// backend, every unit gets its own instance
func newClustererFactory(cfg config.Config) (batch.ClustererFactory, error) {

	kcfg := kmeans.DefaultConfig()
	kcfg.Seed = cfg.Seed

	if cfg.Clusterer == "opencv" {
		return openCVClusterer(kcfg)
	}

	return func() boxcluster.Clusterer {
		return kmeans.New(kcfg)
	}, nil
}

// newRenderer returns the configured rendering backend, nil when rendering
// is disabled
func newRenderer(cfg config.Config) (boxcluster.Renderer, error) {

	switch cfg.Renderer {
	case "opencv":
		highlight, err := cfg.HighlightColor()

		if err != nil {
			return nil, err
		}

		return openCVRenderer(cfg, highlight)

	case "raster":
		highlight, err := cfg.HighlightColor()

		if err != nil {
			return nil, err
		}

		return raster.New(raster.Options{
			Highlight: highlight,
			Labels:    cfg.Labels,
			Clusters:  cfg.Clusters,
		}), nil
	}

	return nil, nil
}
