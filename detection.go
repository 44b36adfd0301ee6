package boxcluster

import (
	"fmt"
)

// Detection is a single raw detector output, a bounding box with the
// confidence score the detector assigned to it
type Detection struct {
	// Confidence is the detector score, zero or greater
	Confidence float64 `json:"confidence"`
	// X and Y are the top left corner of the box in pixels
	X int `json:"x"`
	Y int `json:"y"`
	// Width and Height are the box dimensions in pixels
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether the detection is the all zero sentinel used for
// clusters that received no detections
func (d Detection) IsZero() bool {
	return d == Detection{}
}

// Right returns the x coordinate of the right edge of the box
func (d Detection) Right() int {
	return d.X + d.Width
}

// Bottom returns the y coordinate of the bottom edge of the box
func (d Detection) Bottom() int {
	return d.Y + d.Height
}

func (d Detection) String() string {
	return fmt.Sprintf("(confidence %f): (%d, %d) %dx%d",
		d.Confidence, d.X, d.Y, d.Width, d.Height)
}

// Point is a detection projected onto the 2D plane used for clustering
type Point struct {
	X float64
	Y float64
}

// Projection maps a detection to the point it is clustered by
type Projection func(Detection) Point

// TopLeft projects a detection onto its top left corner
func TopLeft(d Detection) Point {
	return Point{X: float64(d.X), Y: float64(d.Y)}
}

// Center projects a detection onto the middle of its box.  Boxes of the same
// object that differ in size agree more closely on their center than on
// their corner.
func Center(d Detection) Point {
	return Point{
		X: float64(d.X) + float64(d.Width)/2,
		Y: float64(d.Y) + float64(d.Height)/2,
	}
}

// ProjectAll applies the projection to every detection, keeping order.  A
// nil projection falls back to TopLeft.
func ProjectAll(detections []Detection, proj Projection) []Point {

	if proj == nil {
		proj = TopLeft
	}

	points := make([]Point, len(detections))

	for i, det := range detections {
		points[i] = proj(det)
	}

	return points
}

// ProjectionByName returns the projection registered under the given name,
// either "topleft" or "center"
func ProjectionByName(name string) (Projection, error) {

	switch name {
	case "", "topleft":
		return TopLeft, nil
	case "center":
		return Center, nil
	}

	return nil, fmt.Errorf("%w: unknown projection %q", ErrInvalidInput, name)
}
