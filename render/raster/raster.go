// Package raster draws consolidated detection boxes onto photos in pure Go,
// for builds and hosts without OpenCV
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/swdee/go-boxcluster"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Highlight is the default outline colour of chosen boxes
var Highlight = color.RGBA{R: 255, G: 255, B: 0, A: 255}

// Options defines how boxes are rendered
type Options struct {
	// Highlight is the outline colour of chosen boxes
	Highlight color.Color
	// Labels draws the confidence score above each chosen box
	Labels bool
	// Clusters draws every raw detection in the colour of its cluster
	Clusters bool
}

// Renderer draws annotations onto photo files
type Renderer struct {
	opts Options
}

// New returns a Renderer, a nil highlight colour defaults to Highlight
func New(opts Options) *Renderer {

	if opts.Highlight == nil {
		opts.Highlight = Highlight
	}

	return &Renderer{opts: opts}
}

// Render reads the photo at src, draws the annotation and saves it to dst in
// the format given by the extension of dst
func (r *Renderer) Render(src, dst string, ann boxcluster.Annotation) error {

	img, err := imaging.Open(src)

	if err != nil {
		return errors.Wrapf(err, "error reading image from: %s", src)
	}

	canvas := imaging.Clone(img)
	r.Draw(canvas, ann)

	if err := imaging.Save(canvas, dst); err != nil {
		return errors.Wrapf(err, "error writing image to: %s", dst)
	}

	return nil
}

// Draw renders the annotation onto an image in memory
func (r *Renderer) Draw(dst draw.Image, ann boxcluster.Annotation) {

	if r.opts.Clusters {
		for i, det := range ann.Detections {
			if i < len(ann.Labels) {
				Outline(dst, rect(det), ClusterColor(ann.Labels[i]))
			}
		}
	}

	for _, box := range ann.Chosen {
		Outline(dst, rect(box), r.opts.Highlight)
	}

	if !r.opts.Labels {
		return
	}

	for _, box := range ann.Chosen {
		label(dst, box, r.opts.Highlight)
	}
}

// rect converts a detection to the rectangle between its corners
func rect(det boxcluster.Detection) image.Rectangle {
	return image.Rect(det.X, det.Y, det.Right(), det.Bottom())
}

// Outline draws a one pixel border along r.  Both corner points lie on the
// border, matching OpenCV's rectangle drawing.
func Outline(dst draw.Image, r image.Rectangle, c color.Color) {

	r = r.Canon()
	src := image.NewUniform(c)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y, r.Max.X+1, r.Max.Y+1),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y+1),
		image.Rect(r.Max.X, r.Min.Y, r.Max.X+1, r.Max.Y+1),
	}

	for _, edge := range edges {
		draw.Draw(dst, edge, src, image.Point{}, draw.Src)
	}
}

// label writes the confidence on a filled tab above the box
func label(dst draw.Image, box boxcluster.Detection, bg color.Color) {

	face := basicfont.Face7x13
	text := fmt.Sprintf("%.2f", box.Confidence)

	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	tab := image.Rect(box.X, box.Y-height-2, box.X+width+4, box.Y)
	draw.Draw(dst, tab, image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(box.X+2, box.Y-2-face.Metrics().Descent.Ceil()),
	}
	d.DrawString(text)
}

// ClusterColor returns a distinct colour for the cluster id by stepping
// around the hue circle
func ClusterColor(id int) color.RGBA {

	if id < 0 {
		id = -id
	}

	hue := float64((id * 67) % 360)
	r, g, b := colorful.Hsv(hue, 0.85, 1.0).Clamped().RGB255()

	return color.RGBA{R: r, G: g, B: b, A: 255}
}
