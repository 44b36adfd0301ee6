// Package kmeans is a pure Go k-means clustering primitive for 2D points.
//
// Initial centers are chosen with k-means++ seeding, refined with Lloyd
// iterations until either the iteration limit is reached or no center moves
// further than the configured epsilon, and the best of several independent
// attempts is kept.  These are the same termination rules OpenCV's kmeans
// applies.
package kmeans

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/swdee/go-boxcluster"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// dims is the dimensionality of the points clustered
const dims = 2

var (
	// ErrNoPoints is returned when there is nothing to cluster
	ErrNoPoints = errors.New("no points to cluster")
	// ErrNotConverged is returned when an attempt ends in a non finite
	// compactness
	ErrNotConverged = errors.New("clustering did not converge")
)

// Config defines the termination criteria and restarts of a clustering run
type Config struct {
	// MaxIterations caps the Lloyd refinement steps per attempt
	MaxIterations int
	// Epsilon stops refinement once no center moves further than it
	Epsilon float64
	// Attempts is the number of independently seeded runs, the most compact
	// of which is returned
	Attempts int
	// Seed initialises the random source used for center seeding
	Seed int64
}

// DefaultConfig returns 10 iterations, an epsilon of 1.0 and 3 attempts
func DefaultConfig() Config {
	return Config{
		MaxIterations: 10,
		Epsilon:       1.0,
		Attempts:      3,
		Seed:          1,
	}
}

// KMeans clusters points with k-means.  The random source carries over from
// one call to the next so a sequence of calls is reproducible for a given
// seed.  A KMeans must not be shared between goroutines.
type KMeans struct {
	cfg Config
	rng *rand.Rand
}

// New returns a KMeans using the given configuration, zero valued fields are
// taken from DefaultConfig
func New(cfg Config) *KMeans {

	def := DefaultConfig()

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
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Cluster partitions points into k clusters returning the cluster id of each
// point and the sum of squared distances of the points to their centers
func (km *KMeans) Cluster(points []boxcluster.Point, k int) ([]int, float64, error) {

	n := len(points)

	if n == 0 {
		return nil, 0, ErrNoPoints
	}

	if k < 1 {
		return nil, 0, fmt.Errorf("cluster count %d is below 1", k)
	}

	// with at least as many clusters as points every point is its own
	// center, which is the exact optimum
	if k >= n {
		labels := make([]int, n)

		for i := range labels {
			labels[i] = i
		}

		return labels, 0, nil
	}

	data := mat.NewDense(n, dims, nil)

	for i, p := range points {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
	}

	var bestLabels []int
	bestCompactness := math.Inf(1)

	for a := 0; a < km.cfg.Attempts; a++ {

		labels, compactness := km.attempt(data, k)

		if math.IsNaN(compactness) || math.IsInf(compactness, 0) {
			return nil, 0, ErrNotConverged
		}

		if compactness < bestCompactness {
			bestLabels = labels
			bestCompactness = compactness
		}
	}

	return bestLabels, bestCompactness, nil
}

// attempt runs one seeded k-means refinement
func (km *KMeans) attempt(data *mat.Dense, k int) ([]int, float64) {

	n, _ := data.Dims()
	labels := make([]int, n)
	centers := km.seed(data, k)
	epsSq := km.cfg.Epsilon * km.cfg.Epsilon

	for iter := 0; iter < km.cfg.MaxIterations; iter++ {

		assign(data, centers, labels)
		next := update(data, centers, labels, k)

		// largest squared movement of any center
		shift := 0.0

		for c := 0; c < k; c++ {
			shift = math.Max(shift, sqDist(centers.RawRowView(c), next.RawRowView(c)))
		}

		centers = next

		if shift <= epsSq {
			break
		}
	}

	return labels, assign(data, centers, labels)
}

// seed picks k initial centers using k-means++, each new center is drawn
// with probability proportional to its squared distance from the nearest
// center already chosen
func (km *KMeans) seed(data *mat.Dense, k int) *mat.Dense {

	n, _ := data.Dims()
	centers := mat.NewDense(k, dims, nil)

	first := km.rng.Intn(n)
	centers.SetRow(0, data.RawRowView(first))

	dist := make([]float64, n)

	for i := 0; i < n; i++ {
		dist[i] = sqDist(data.RawRowView(i), centers.RawRowView(0))
	}

	cum := make([]float64, n)

	for c := 1; c < k; c++ {

		floats.CumSum(cum, dist)
		total := cum[n-1]

		var pick int

		if total > 0 {
			pick = weightedPick(cum, km.rng.Float64()*total)
		} else {
			// all remaining points coincide with a center
			pick = km.rng.Intn(n)
		}

		centers.SetRow(c, data.RawRowView(pick))

		for i := 0; i < n; i++ {
			dist[i] = math.Min(dist[i], sqDist(data.RawRowView(i), centers.RawRowView(c)))
		}
	}

	return centers
}

// weightedPick returns the index whose range of the cumulative weights cum
// holds x.  Points of zero weight own an empty range so are never picked.
func weightedPick(cum []float64, x float64) int {

	n := len(cum)
	pick := sort.Search(n, func(i int) bool { return cum[i] > x })

	if pick < n {
		return pick
	}

	// x reached the total, take the last point carrying weight
	pick = n - 1

	for pick > 0 && cum[pick] == cum[pick-1] {
		pick--
	}

	return pick
}

// assign labels every point with its nearest center and returns the
// resulting compactness
func assign(data, centers *mat.Dense, labels []int) float64 {

	n, _ := data.Dims()
	k, _ := centers.Dims()
	compactness := 0.0

	for i := 0; i < n; i++ {

		row := data.RawRowView(i)
		best := 0
		bestDist := math.Inf(1)

		for c := 0; c < k; c++ {
			if d := sqDist(row, centers.RawRowView(c)); d < bestDist {
				best = c
				bestDist = d
			}
		}

		labels[i] = best
		compactness += bestDist
	}

	return compactness
}

// update computes the mean of every cluster.  A cluster left without points
// is moved onto the point lying furthest from its own center.
func update(data, centers *mat.Dense, labels []int, k int) *mat.Dense {

	n, _ := data.Dims()
	next := mat.NewDense(k, dims, nil)
	counts := make([]int, k)

	for i := 0; i < n; i++ {
		floats.Add(next.RawRowView(labels[i]), data.RawRowView(i))
		counts[labels[i]]++
	}

	taken := make([]bool, n)

	for c := 0; c < k; c++ {

		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), next.RawRowView(c))
			continue
		}

		far := -1
		farDist := -1.0

		for i := 0; i < n; i++ {

			if taken[i] {
				continue
			}

			if d := sqDist(data.RawRowView(i), centers.RawRowView(labels[i])); d > farDist {
				far = i
				farDist = d
			}
		}

		if far >= 0 {
			taken[far] = true
			next.SetRow(c, data.RawRowView(far))
		}
	}

	return next
}

// sqDist returns the squared euclidean distance between a and b
func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
