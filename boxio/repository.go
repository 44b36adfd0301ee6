// Package boxio reads detection boxes from and writes consolidated boxes to
// the file layout used for a batch of photos.
//
// For a unit of work named "3" the detections are read from <input>/3, the
// photo from <images>/3.png, and the results are written to <output>/3 and
// the annotated photo to <output>/3.png.
package boxio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/swdee/go-boxcluster"
)

// DefaultImageExt is the extension of the photos belonging to each unit
const DefaultImageExt = ".png"

// IOError reports a box source that could not be read or a sink that could
// not be written
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Repository locates the files of each unit of work
type Repository struct {
	// InputDir holds the detection files, one per unit
	InputDir string
	// ImageDir holds the source photos
	ImageDir string
	// OutputDir receives result files and annotated photos
	OutputDir string
	// ImageExt is the photo file extension including the dot
	ImageExt string
	// Strict rejects malformed detection lines instead of zeroing them
	Strict bool
}

// Prepare creates the output directory if it does not exist yet
func (r *Repository) Prepare() error {

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: r.OutputDir, Err: err}
	}

	return nil
}

// InputPath returns the detection file of the unit
func (r *Repository) InputPath(unit string) string {
	return filepath.Join(r.InputDir, unit)
}

// OutputPath returns the result file of the unit
func (r *Repository) OutputPath(unit string) string {
	return filepath.Join(r.OutputDir, unit)
}

// ImagePath returns the source photo of the unit
func (r *Repository) ImagePath(unit string) string {
	return filepath.Join(r.ImageDir, unit+r.imageExt())
}

// AnnotatedPath returns where the photo with the chosen boxes drawn is saved
func (r *Repository) AnnotatedPath(unit string) string {
	return filepath.Join(r.OutputDir, unit+r.imageExt())
}

func (r *Repository) imageExt() string {

	if r.ImageExt == "" {
		return DefaultImageExt
	}

	return r.ImageExt
}

// Load reads the detections of the unit
func (r *Repository) Load(unit string) (Parsed, error) {

	path := r.InputPath(unit)
	f, err := os.Open(path)

	if err != nil {
		return Parsed{}, &IOError{Op: "open", Path: path, Err: err}
	}

	defer f.Close()

	parsed, err := Decode(f, r.Strict)

	if err != nil {
		var perr *ParseError

		if errors.As(err, &perr) {
			return Parsed{}, errors.Wrapf(err, "error parsing %s", path)
		}

		return Parsed{}, &IOError{Op: "read", Path: path, Err: err}
	}

	return parsed, nil
}

// Store writes the chosen boxes of the unit, replacing any earlier result
func (r *Repository) Store(unit string, boxes []boxcluster.Detection) error {

	path := r.OutputPath(unit)
	f, err := os.Create(path)

	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	if err := Encode(f, boxes); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}

	return nil
}

// Units returns the names of the units to process.  A positive count gives
// the units "0" to count-1.  A count of zero lists the regular files in the
// input directory, numeric names first in numeric order followed by the
// rest alphabetically.
func (r *Repository) Units(count int) ([]string, error) {

	if count > 0 {
		units := make([]string, count)

		for i := range units {
			units[i] = strconv.Itoa(i)
		}

		return units, nil
	}

	entries, err := os.ReadDir(r.InputDir)

	if err != nil {
		return nil, &IOError{Op: "list", Path: r.InputDir, Err: err}
	}

	var units []string

	for _, entry := range entries {
		if entry.Type().IsRegular() {
			units = append(units, entry.Name())
		}
	}

	sort.SliceStable(units, func(i, j int) bool {

		ni, errI := strconv.Atoi(units[i])
		nj, errJ := strconv.Atoi(units[j])

		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}

		return units[i] < units[j]
	})

	return units, nil
}
