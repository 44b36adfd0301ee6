package render

import (
	"path/filepath"
	"testing"

	"github.com/swdee/go-boxcluster"
	"gocv.io/x/gocv"
)

// bgrAt returns the blue, green and red values of the pixel
func bgrAt(img gocv.Mat, x, y int) [3]uint8 {
	v := img.GetVecbAt(y, x)
	return [3]uint8{v[0], v[1], v[2]}
}

func TestDetectionBoxes(t *testing.T) {

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8UC3)
	defer img.Close()

	boxes := []boxcluster.Detection{{Confidence: 0.9, X: 10, Y: 20, Width: 30, Height: 40}}

	DetectionBoxes(&img, boxes, DefaultStyle())

	yellow := [3]uint8{0, 255, 255}

	tests := []struct {
		x, y     int
		expected [3]uint8
	}{
		{10, 20, yellow},
		{40, 60, yellow},
		{25, 20, yellow},
		{25, 40, [3]uint8{}},
		{90, 90, [3]uint8{}},
	}

	for _, tc := range tests {
		if got := bgrAt(img, tc.x, tc.y); got != tc.expected {
			t.Errorf("pixel (%d,%d): expected %v, got %v", tc.x, tc.y, tc.expected, got)
		}
	}
}

func TestAnnotatorRender(t *testing.T) {

	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")

	blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 50, 50, gocv.MatTypeCV8UC3)
	defer blank.Close()

	if !gocv.IMWrite(src, blank) {
		t.Fatalf("could not write source image")
	}

	style := DefaultStyle()
	style.Clusters = true

	ann := boxcluster.Annotation{
		Chosen:     []boxcluster.Detection{{Confidence: 0.8, X: 5, Y: 5, Width: 10, Height: 10}},
		Detections: []boxcluster.Detection{{Confidence: 0.3, X: 30, Y: 30, Width: 10, Height: 10}},
		Labels:     []int{0},
	}

	if err := NewAnnotator(style).Render(src, dst, ann); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := gocv.IMRead(dst, gocv.IMReadColor)
	defer out.Close()

	if got := bgrAt(out, 5, 5); got != [3]uint8{0, 255, 255} {
		t.Errorf("chosen box outline missing, got %v", got)
	}

	clr := ClusterColor(0)

	if got := bgrAt(out, 30, 30); got != [3]uint8{clr.B, clr.G, clr.R} {
		t.Errorf("cluster box outline missing, got %v", got)
	}

	if err := NewAnnotator(style).Render(filepath.Join(dir, "missing.png"), dst, ann); err == nil {
		t.Errorf("expected error for missing source image")
	}
}
