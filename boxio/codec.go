package boxio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-boxcluster"
)

// fieldCount is the number of whitespace separated fields in a detection
// record: confidence x y width height
const fieldCount = 5

// ParseError describes a detection record that could not be decoded
type ParseError struct {
	// Line is the 1-based line number of the record
	Line int
	// Text is the raw line content
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parsed holds the detections decoded from a box source
type Parsed struct {
	// Detections has one entry per line read
	Detections []boxcluster.Detection
	// Malformed lists the 1-based line numbers that were replaced with a
	// zero detection
	Malformed []int
}

// Decode reads one detection per line in the form
//
//	<confidence> <x> <y> <width> <height>
//
// In lenient mode a line that is blank or does not parse still produces a
// detection, the zero Detection, and its line number is recorded in
// Parsed.Malformed.  In strict mode the first such line is returned as a
// *ParseError.
func Decode(r io.Reader, strict bool) (Parsed, error) {

	var parsed Parsed

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {

		line++
		text := scanner.Text()

		det, err := parseRecord(text)

		if err != nil {
			if strict {
				return Parsed{}, &ParseError{Line: line, Text: text, Err: err}
			}

			parsed.Malformed = append(parsed.Malformed, line)
			det = boxcluster.Detection{}
		}

		parsed.Detections = append(parsed.Detections, det)
	}

	if err := scanner.Err(); err != nil {
		return Parsed{}, errors.Wrap(err, "error reading boxes")
	}

	return parsed, nil
}

// parseRecord decodes a single detection line
func parseRecord(text string) (boxcluster.Detection, error) {

	fields := strings.Fields(text)

	if len(fields) != fieldCount {
		return boxcluster.Detection{}, errors.Errorf("expected %d fields, got %d",
			fieldCount, len(fields))
	}

	confidence, err := strconv.ParseFloat(fields[0], 64)

	if err != nil {
		return boxcluster.Detection{}, errors.Wrap(err, "confidence")
	}

	var ints [fieldCount - 1]int

	for i, f := range fields[1:] {
		if ints[i], err = strconv.Atoi(f); err != nil {
			return boxcluster.Detection{}, errors.Wrapf(err, "field %d", i+2)
		}
	}

	det := boxcluster.Detection{
		Confidence: confidence,
		X:          ints[0],
		Y:          ints[1],
		Width:      ints[2],
		Height:     ints[3],
	}

	if det.Confidence < 0 || det.Width < 0 || det.Height < 0 {
		return boxcluster.Detection{}, errors.New("negative confidence or size")
	}

	return det, nil
}

// Encode writes one line per box in the form
//
//	<x> <y> <width> <height>
//
// keeping the order given, the confidence is not written
func Encode(w io.Writer, boxes []boxcluster.Detection) error {

	bw := bufio.NewWriter(w)

	for _, box := range boxes {
		if _, err := fmt.Fprintf(bw, "%d %d %d %d\n", box.X, box.Y, box.Width, box.Height); err != nil {
			return errors.Wrap(err, "error writing boxes")
		}
	}

	return errors.Wrap(bw.Flush(), "error writing boxes")
}
