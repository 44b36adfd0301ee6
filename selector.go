package boxcluster

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultStrictFactor is the factor by which the marginal compactness
	// gain must collapse for the primary elbow pass to accept a cluster count
	DefaultStrictFactor = 100.0
	// DefaultLenientFactor is the collapse factor used by the fallback pass
	DefaultLenientFactor = 10.0
)

// Clusterer partitions points into k groups.  It returns one label in [0,k)
// per point and the compactness of the partition, being the sum of squared
// distances from every point to its assigned center.
type Clusterer interface {
	Cluster(points []Point, k int) (labels []int, compactness float64, err error)
}

// ClustererFunc adapts a plain function to the Clusterer interface
type ClustererFunc func(points []Point, k int) ([]int, float64, error)

// Cluster calls f(points, k)
func (f ClustererFunc) Cluster(points []Point, k int) ([]int, float64, error) {
	return f(points, k)
}

// Trial is the compactness recorded for one cluster count
type Trial struct {
	K           int     `json:"k"`
	Compactness float64 `json:"compactness"`
}

// CompactnessTrace holds the trials for k = 1..kMax in order
type CompactnessTrace []Trial

// Compactness returns the compactness recorded for k
func (t CompactnessTrace) Compactness(k int) float64 {
	return t[k-1].Compactness
}

// Labeling assigns every point a cluster id in [0,K)
type Labeling struct {
	Labels []int
	K      int
	// Trace is the compactness curve the cluster count was chosen from, it
	// is empty when no clustering was needed
	Trace CompactnessTrace
}

// Selector chooses the number of clusters for a point set using the elbow
// of the k-means compactness curve
type Selector struct {
	clusterer     Clusterer
	strictFactor  float64
	lenientFactor float64
}

// SelectorOption configures a Selector
type SelectorOption func(*Selector)

// WithStrictFactor sets the collapse factor used by the primary pass
func WithStrictFactor(f float64) SelectorOption {
	return func(s *Selector) {
		s.strictFactor = f
	}
}

// WithLenientFactor sets the collapse factor used by the fallback pass
func WithLenientFactor(f float64) SelectorOption {
	return func(s *Selector) {
		s.lenientFactor = f
	}
}

// NewSelector returns a Selector running trials on the given clusterer
func NewSelector(c Clusterer, opts ...SelectorOption) *Selector {

	s := &Selector{
		clusterer:     c,
		strictFactor:  DefaultStrictFactor,
		lenientFactor: DefaultLenientFactor,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Select determines the cluster count k in [1,kMax] and the labelling of
// points for it.
//
// Every k from 1 to kMax is tried in turn.  Walking the compactness curve,
// the first k where the gain of adding another cluster drops below
// 1/strictFactor of the previous gain is the elbow.  When the curve has no
// such collapse the walk is repeated with lenientFactor and the largest
// qualifying k is used.  Without any elbow all points form one cluster.
//
// Elbow candidates are limited to k <= kMax-2 as the gain following k must
// itself be measured from trials below kMax.
func (s *Selector) Select(points []Point, kMax int) (Labeling, error) {

	if len(points) == 0 {
		return Labeling{}, fmt.Errorf("%w: no points to cluster", ErrInvalidInput)
	}

	if kMax < 1 {
		return Labeling{}, fmt.Errorf("%w: maximum cluster count %d is below 1",
			ErrInvalidInput, kMax)
	}

	// a lone detection is its own cluster
	if len(points) == 1 {
		return Labeling{Labels: []int{0}, K: 1}, nil
	}

	trace := make(CompactnessTrace, 0, kMax)
	var firstLabels []int

	for k := 1; k <= kMax; k++ {

		labels, compactness, err := s.run(points, k)

		if err != nil {
			return Labeling{}, err
		}

		if k == 1 {
			firstLabels = labels
		}

		trace = append(trace, Trial{K: k, Compactness: compactness})
	}

	// primary pass, stop at the first dramatic collapse
	prevDiff := 0.0

	for i := 2; i < kMax; i++ {

		diff := trace.Compactness(i-1) - trace.Compactness(i)

		if prevDiff > s.strictFactor*diff {

			k := i - 1
			labels, _, err := s.run(points, k)

			if err != nil {
				return Labeling{}, err
			}

			return Labeling{Labels: labels, K: k, Trace: trace}, nil
		}

		prevDiff = diff
	}

	// fallback pass, keep the largest k that shows a moderate collapse
	best := Labeling{Labels: firstLabels, K: 1, Trace: trace}
	prevDiff = 0.0

	for i := 2; i < kMax; i++ {

		diff := trace.Compactness(i-1) - trace.Compactness(i)

		if prevDiff > s.lenientFactor*diff {

			k := i - 1
			labels, _, err := s.run(points, k)

			if err != nil {
				return Labeling{}, err
			}

			best.Labels = labels
			best.K = k
			continue
		}

		prevDiff = diff
	}

	return best, nil
}

// run invokes the clusterer for k and checks the result honours the
// Clusterer contract
func (s *Selector) run(points []Point, k int) ([]int, float64, error) {

	labels, compactness, err := s.clusterer.Cluster(points, k)

	if err != nil {
		return nil, 0, &ClusteringFailedError{K: k, Err: err}
	}

	if len(labels) != len(points) {
		return nil, 0, &ClusteringFailedError{K: k,
			Err: fmt.Errorf("got %d labels for %d points", len(labels), len(points))}
	}

	for i, label := range labels {
		if label < 0 || label >= k {
			return nil, 0, &ClusteringFailedError{K: k,
				Err: fmt.Errorf("label %d of point %d out of range", label, i)}
		}
	}

	if math.IsNaN(compactness) || math.IsInf(compactness, 0) {
		return nil, 0, &ClusteringFailedError{K: k,
			Err: errors.New("compactness is not finite")}
	}

	return labels, compactness, nil
}
