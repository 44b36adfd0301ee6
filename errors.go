package boxcluster

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when the selector or reducer is called with an
// empty point set, a non positive cluster bound or inconsistent labels
var ErrInvalidInput = errors.New("invalid input")

// ClusteringFailedError is returned when the clustering primitive could not
// produce a labelling and compactness for the requested cluster count
type ClusteringFailedError struct {
	// K is the cluster count that failed
	K   int
	Err error
}

func (e *ClusteringFailedError) Error() string {
	return fmt.Sprintf("clustering failed for k=%d: %v", e.K, e.Err)
}

func (e *ClusteringFailedError) Unwrap() error {
	return e.Err
}
