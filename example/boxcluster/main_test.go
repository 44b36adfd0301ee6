package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-boxcluster"
	"github.com/swdee/go-boxcluster/internal/config"
	"github.com/swdee/go-boxcluster/render/raster"
)

func TestNewRendererNoneIgnoresHighlight(t *testing.T) {

	cfg := config.Default()
	cfg.Renderer = "none"
	cfg.Highlight = "#ffff0080"

	renderer, err := newRenderer(cfg)
	require.NoError(t, err)
	assert.Nil(t, renderer)
}

func TestNewRendererRaster(t *testing.T) {

	cfg := config.Default()
	cfg.Renderer = "raster"

	renderer, err := newRenderer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &raster.Renderer{}, renderer)

	cfg.Highlight = "#ff0f"
	_, err = newRenderer(cfg)
	assert.Error(t, err)
}

func TestNewClustererFactoryGonum(t *testing.T) {

	cfg := config.Default()
	cfg.Clusterer = "gonum"

	factory, err := newClustererFactory(cfg)
	require.NoError(t, err)

	points := []boxcluster.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 500, Y: 500}, {X: 501, Y: 500}}
	labels, _, err := factory().Cluster(points, 2)
	require.NoError(t, err)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[2], labels[3])
	assert.NotEqual(t, labels[0], labels[2])
}
