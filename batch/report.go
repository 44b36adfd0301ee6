package batch

import (
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report summarises a batch run
type Report struct {
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Failed  int           `json:"failed"`
	Results []Result      `json:"results"`
}

// Annotated returns the paths of the photos that were rendered, in unit
// order
func (r Report) Annotated() []string {

	var paths []string

	for _, res := range r.Results {
		if res.Annotated != "" {
			paths = append(paths, res.Annotated)
		}
	}

	return paths
}

// WriteJSON saves the report as indented JSON
func (r Report) WriteJSON(path string) error {

	data, err := json.MarshalIndent(r, "", "  ")

	if err != nil {
		return errors.Wrap(err, "error encoding report")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "error writing report to %s", path)
	}

	return nil
}

// ReadReport loads a report written by WriteJSON
func ReadReport(path string) (Report, error) {

	var r Report

	data, err := os.ReadFile(path)

	if err != nil {
		return r, errors.Wrapf(err, "error reading report %s", path)
	}

	if err := json.Unmarshal(data, &r); err != nil {
		return r, errors.Wrapf(err, "error decoding report %s", path)
	}

	return r, nil
}
