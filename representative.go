package boxcluster

import (
	"fmt"
)

// Reduce returns one detection per cluster, the one with the highest
// confidence.  The result always holds exactly k detections indexed by
// cluster id.  Ties keep the detection seen first and a cluster nobody was
// assigned to keeps the zero Detection.
func Reduce(detections []Detection, labels []int, k int) ([]Detection, error) {

	if k < 1 {
		return nil, fmt.Errorf("%w: cluster count %d is below 1", ErrInvalidInput, k)
	}

	if len(detections) != len(labels) {
		return nil, fmt.Errorf("%w: %d labels for %d detections",
			ErrInvalidInput, len(labels), len(detections))
	}

	best := make([]Detection, k)

	for i, det := range detections {

		label := labels[i]

		if label < 0 || label >= k {
			return nil, fmt.Errorf("%w: label %d of detection %d outside [0,%d)",
				ErrInvalidInput, label, i, k)
		}

		if best[label].Confidence < det.Confidence {
			best[label] = det
		}
	}

	return best, nil
}
