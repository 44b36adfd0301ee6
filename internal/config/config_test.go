package config

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 10, cfg.MaxClusters)
	assert.Equal(t, 5, cfg.NumFiles)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {

	t.Setenv("BOXCLUSTER_MAX_CLUSTERS", "7")
	t.Setenv("BOXCLUSTER_RENDERER", "raster")
	t.Setenv("BOXCLUSTER_STRICT", "true")

	cfg, err := Load([]string{"-max-clusters", "4", "-projection", "center", "-workers", "3"})
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxClusters)
	assert.Equal(t, "raster", cfg.Renderer)
	assert.Equal(t, "center", cfg.Projection)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Strict)
}

func TestLoadInvalid(t *testing.T) {

	tests := []struct {
		name string
		args []string
	}{
		{"zero clusters", []string{"-max-clusters", "0"}},
		{"negative files", []string{"-num-files", "-1"}},
		{"no workers", []string{"-workers", "0"}},
		{"unknown clusterer", []string{"-clusterer", "dbscan"}},
		{"unknown renderer", []string{"-renderer", "svg"}},
		{"unknown projection", []string{"-projection", "corner"}},
		{"bad colour", []string{"-highlight", "yellow"}},
		{"colour with alpha", []string{"-highlight", "#ff0f"}},
		{"long colour with alpha", []string{"-highlight", "#ffff0080"}},
		{"bad extension", []string{"-image-ext", "png"}},
		{"unknown flag", []string{"-verbose"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadUnparsableEnv(t *testing.T) {

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"int", "BOXCLUSTER_MAX_CLUSTERS", "ten"},
		{"int64", "BOXCLUSTER_SEED", "0x"},
		{"bool", "BOXCLUSTER_STRICT", "maybe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			// a flag overriding the variable does not hide the bad value
			_, err := Load([]string{"-max-clusters", "3", "-seed", "2", "-strict"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoadEmptyEnvUsesDefault(t *testing.T) {

	t.Setenv("BOXCLUSTER_WORKERS", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
}

func TestHighlightColor(t *testing.T) {

	cfg := Default()

	clr, err := cfg.HighlightColor()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 0, A: 255}, clr)

	cfg.Highlight = "#00ff80"
	clr, err = cfg.HighlightColor()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0, G: 255, B: 128, A: 255}, clr)

	cfg.Highlight = "#f00"
	clr, err = cfg.HighlightColor()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, clr)

	for _, hex := range []string{"#f00f", "#ff000080"} {
		cfg.Highlight = hex
		_, err = cfg.HighlightColor()
		assert.Error(t, err, hex)
		assert.Error(t, cfg.Validate(), hex)
	}
}
