package boxcluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjections(t *testing.T) {

	det := Detection{Confidence: 0.5, X: 10, Y: 20, Width: 31, Height: 40}

	assert.Equal(t, Point{X: 10, Y: 20}, TopLeft(det))
	assert.Equal(t, Point{X: 25.5, Y: 40}, Center(det))
	assert.Equal(t, 41, det.Right())
	assert.Equal(t, 60, det.Bottom())
}

func TestProjectAll(t *testing.T) {

	dets := []Detection{
		{X: 1, Y: 2, Width: 2, Height: 2},
		{X: 5, Y: 6, Width: 4, Height: 8},
	}

	assert.Equal(t, []Point{{1, 2}, {5, 6}}, ProjectAll(dets, nil))
	assert.Equal(t, []Point{{2, 3}, {7, 10}}, ProjectAll(dets, Center))
}

func TestProjectionByName(t *testing.T) {

	det := Detection{X: 2, Y: 2, Width: 4, Height: 4}

	proj, err := ProjectionByName("center")
	require.NoError(t, err)
	assert.Equal(t, Point{X: 4, Y: 4}, proj(det))

	proj, err = ProjectionByName("")
	require.NoError(t, err)
	assert.Equal(t, Point{X: 2, Y: 2}, proj(det))

	_, err = ProjectionByName("bottomright")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
