// Package render draws consolidated detection boxes onto photos using GoCV
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/swdee/go-boxcluster"
	"gocv.io/x/gocv"
)

// Style defines how boxes are rendered
type Style struct {
	// Highlight is the outline colour of chosen boxes
	Highlight color.RGBA
	// LineThickness of chosen box outlines
	LineThickness int
	// Labels draws the confidence score above each chosen box
	Labels bool
	// Clusters draws every raw detection in the colour of its cluster
	// underneath the chosen boxes
	Clusters bool
	Font     Font
}

// DefaultStyle returns a one pixel highlight outline without labels
func DefaultStyle() Style {
	return Style{
		Highlight:     Highlight,
		LineThickness: 1,
		Font:          DefaultFont(),
	}
}

// boxLabel holds the precalculated placement of a confidence label
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// rect converts a detection to the rectangle it covers
func rect(det boxcluster.Detection) image.Rectangle {
	return image.Rect(det.X, det.Y, det.Right(), det.Bottom())
}

// DetectionBoxes renders the outline of each chosen box
func DetectionBoxes(img *gocv.Mat, boxes []boxcluster.Detection, style Style) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, box := range boxes {

		// draw rectangle around the object, an empty cluster's zero box is
		// drawn as well at the origin
		gocv.Rectangle(img, rect(box), style.Highlight, style.LineThickness)

		if !style.Labels {
			continue
		}

		text := fmt.Sprintf("%.2f", box.Confidence)
		font := style.Font
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// left align label to the box
		centerX := box.X + (textSize.X / 2) + font.LeftPad - (style.LineThickness / 2)

		boxLabels = append(boxLabels, boxLabel{
			rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
				box.Y-textSize.Y-font.TopPad-font.BottomPad,
				centerX+textSize.X/2+font.RightPad, box.Y),
			clr:     style.Highlight,
			text:    text,
			textPos: image.Pt(centerX-textSize.X/2, box.Y-font.BottomPad),
		})
	}

	// draw labels last so they sit on top of every outline
	for _, lbl := range boxLabels {
		gocv.Rectangle(img, lbl.rect, lbl.clr, -1)
		gocv.PutTextWithParams(img, lbl.text, lbl.textPos,
			style.Font.Face, style.Font.Scale, style.Font.Color, style.Font.Thickness,
			style.Font.LineType, false)
	}
}

// ClusterBoxes renders every raw detection in the palette colour of the
// cluster it was assigned to
func ClusterBoxes(img *gocv.Mat, detections []boxcluster.Detection, labels []int) {

	for i, det := range detections {

		if i >= len(labels) {
			break
		}

		gocv.Rectangle(img, rect(det), ClusterColor(labels[i]), 1)
	}
}

// Annotator renders annotations onto photo files
type Annotator struct {
	style Style
}

// NewAnnotator returns an Annotator drawing with the given style
func NewAnnotator(style Style) *Annotator {
	return &Annotator{style: style}
}

// Render reads the photo at src, draws the annotation and writes the result
// to dst, the file extension of dst selects the image format
func (a *Annotator) Render(src, dst string, ann boxcluster.Annotation) error {

	img := gocv.IMRead(src, gocv.IMReadColor)
	defer img.Close()

	if img.Empty() {
		return errors.Errorf("error reading image from: %s", src)
	}

	a.Draw(&img, ann)

	if !gocv.IMWrite(dst, img) {
		return errors.Errorf("error writing image to: %s", dst)
	}

	return nil
}

// Draw renders the annotation onto an image already in memory
func (a *Annotator) Draw(img *gocv.Mat, ann boxcluster.Annotation) {

	if a.style.Clusters {
		ClusterBoxes(img, ann.Detections, ann.Labels)
	}

	DetectionBoxes(img, ann.Chosen, a.style)
}

// Show opens a window per image file and blocks until a key is pressed, the
// window title is the file path
func Show(paths []string) {

	if len(paths) == 0 {
		return
	}

	windows := make([]*gocv.Window, 0, len(paths))
	mats := make([]gocv.Mat, 0, len(paths))

	for _, path := range paths {

		img := gocv.IMRead(path, gocv.IMReadColor)

		if img.Empty() {
			img.Close()
			continue
		}

		window := gocv.NewWindow(path)
		window.IMShow(img)

		windows = append(windows, window)
		mats = append(mats, img)
	}

	if len(windows) > 0 {
		windows[0].WaitKey(0)
	}

	for i := range windows {
		windows[i].Close()
		mats[i].Close()
	}
}
