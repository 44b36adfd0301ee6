//go:build !cgo

package main

import (
	"image/color"

	"github.com/pkg/errors"
	"github.com/swdee/go-boxcluster"
	"github.com/swdee/go-boxcluster/batch"
	"github.com/swdee/go-boxcluster/internal/config"
	"github.com/swdee/go-boxcluster/kmeans"
)

// errNoOpenCV is returned for any OpenCV backend when built without cgo
var errNoOpenCV = errors.New("OpenCV not available: built without cgo, use -clusterer gonum and -renderer raster")

func openCVClusterer(kmeans.Config) (batch.ClustererFactory, error) {
	return nil, errNoOpenCV
}

func openCVRenderer(config.Config, color.RGBA) (boxcluster.Renderer, error) {
	return nil, errNoOpenCV
}

func show([]string) error {
	return errNoOpenCV
}
