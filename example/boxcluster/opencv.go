//go:build cgo

package main

import (
	"image/color"

	"github.com/swdee/go-boxcluster"
	"github.com/swdee/go-boxcluster/batch"
	"github.com/swdee/go-boxcluster/internal/config"
	"github.com/swdee/go-boxcluster/kmeans"
	"github.com/swdee/go-boxcluster/kmeans/cvkmeans"
	"github.com/swdee/go-boxcluster/render"
)

// openCVClusterer returns a factory of clusterers backed by OpenCV's kmeans
func openCVClusterer(kcfg kmeans.Config) (batch.ClustererFactory, error) {
	return func() boxcluster.Clusterer {
		return cvkmeans.New(kcfg)
	}, nil
}

func openCVRenderer(cfg config.Config, highlight color.RGBA) (boxcluster.Renderer, error) {

	style := render.DefaultStyle()
	style.Highlight = highlight
	style.Labels = cfg.Labels
	style.Clusters = cfg.Clusters

	return render.NewAnnotator(style), nil
}

// show displays the photos in a window until a key is pressed
func show(paths []string) error {

	render.Show(paths)

	return nil
}
