// Package cvkmeans provides a clustering primitive backed by OpenCV's kmeans
// through GoCV
package cvkmeans

import (
	"errors"
	"fmt"
	"math"

	"github.com/swdee/go-boxcluster"
	"github.com/swdee/go-boxcluster/kmeans"
	"gocv.io/x/gocv"
)

// KMeans runs cv::kmeans with k-means++ center initialisation.  The labels
// Mat is reused across calls, so a KMeans must not be shared between
// goroutines.  Call Close when finished to release it.
type KMeans struct {
	criteria gocv.TermCriteria
	attempts int
	labels   gocv.Mat
}

// New returns a KMeans using the iteration, epsilon and attempt settings of
// cfg.  The seed is ignored as OpenCV uses its own random number generator.
func New(cfg kmeans.Config) *KMeans {

	def := kmeans.DefaultConfig()

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}

	if cfg.Epsilon <= 0 {
		cfg.Epsilon = def.Epsilon
	}

	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}

	return &KMeans{
		criteria: gocv.NewTermCriteria(gocv.Count|gocv.EPS, cfg.MaxIterations, cfg.Epsilon),
		attempts: cfg.Attempts,
		labels:   gocv.NewMat(),
	}
}

// Cluster partitions points into k clusters using OpenCV
func (km *KMeans) Cluster(points []boxcluster.Point, k int) ([]int, float64, error) {

	n := len(points)

	if n == 0 {
		return nil, 0, kmeans.ErrNoPoints
	}

	if k < 1 {
		return nil, 0, fmt.Errorf("cluster count %d is below 1", k)
	}

	// OpenCV asserts there are at least as many samples as clusters, with
	// that many clusters each point is its own center anyway
	if k >= n {
		labels := make([]int, n)

		for i := range labels {
			labels[i] = i
		}

		return labels, 0, nil
	}

	// one row per sample with the x and y coordinate as columns
	data := gocv.NewMatWithSize(n, 2, gocv.MatTypeCV32F)
	defer data.Close()

	for i, p := range points {
		data.SetFloatAt(i, 0, float32(p.X))
		data.SetFloatAt(i, 1, float32(p.Y))
	}

	centers := gocv.NewMat()
	defer centers.Close()

	compactness := gocv.KMeans(data, k, &km.labels, km.criteria, km.attempts,
		gocv.KMeansPPCenters, &centers)

	if math.IsNaN(compactness) || math.IsInf(compactness, 0) {
		return nil, 0, kmeans.ErrNotConverged
	}

	if km.labels.Rows() != n {
		return nil, 0, errors.New("opencv returned an incomplete labelling")
	}

	labels := make([]int, n)

	for i := range labels {
		labels[i] = int(km.labels.GetIntAt(i, 0))
	}

	return labels, compactness, nil
}

// Close releases the labels buffer
func (km *KMeans) Close() error {
	return km.labels.Close()
}
