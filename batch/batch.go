// Package batch runs box consolidation over every unit of work, being one
// detection file and its photo, isolating failures so one bad unit does not
// stop the rest.
package batch

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-boxcluster"
	"github.com/swdee/go-boxcluster/boxio"
	"github.com/swdee/go-boxcluster/internal/log"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxClusters is the number of objects expected per photo when no
// other bound is configured
const DefaultMaxClusters = 10

// ClustererFactory returns a fresh clusterer for one unit.  Units never share
// a clusterer since trials within a unit depend on the state left by the
// previous trial.  A clusterer implementing io.Closer is closed once its
// unit is done.
type ClustererFactory func() boxcluster.Clusterer

// Result is the outcome of processing one unit
type Result struct {
	Unit  string `json:"unit"`
	RunID string `json:"run_id"`
	// K is the number of objects found
	K int `json:"k"`
	// Boxes holds the representative of each cluster as written
	Boxes []boxcluster.Detection `json:"boxes"`
	// Detections is the number of raw boxes read
	Detections int                         `json:"detections"`
	Malformed  []int                       `json:"malformed,omitempty"`
	Trace      boxcluster.CompactnessTrace `json:"trace,omitempty"`
	// Annotated is the path of the rendered photo when rendering succeeded
	Annotated string        `json:"annotated,omitempty"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
}

// Runner processes units of work read through a repository
type Runner struct {
	repo         *boxio.Repository
	newClusterer ClustererFactory
	renderer     boxcluster.Renderer
	log          logrus.FieldLogger
	workers      int
	maxClusters  int
	projection   boxcluster.Projection
	selectorOpts []boxcluster.SelectorOption
}

// Option configures a Runner
type Option func(*Runner)

// WithRenderer draws the chosen boxes onto each unit's photo
func WithRenderer(r boxcluster.Renderer) Option {
	return func(rn *Runner) {
		rn.renderer = r
	}
}

// WithLogger sets the logger, by default nothing is logged
func WithLogger(l logrus.FieldLogger) Option {
	return func(rn *Runner) {
		rn.log = l
	}
}

// WithWorkers sets how many units are processed at the same time
func WithWorkers(n int) Option {
	return func(rn *Runner) {
		rn.workers = n
	}
}

// WithMaxClusters sets the largest number of objects expected per unit
func WithMaxClusters(k int) Option {
	return func(rn *Runner) {
		rn.maxClusters = k
	}
}

// WithProjection sets how detections are turned into points
func WithProjection(p boxcluster.Projection) Option {
	return func(rn *Runner) {
		rn.projection = p
	}
}

// WithSelectorOptions passes options through to every unit's Selector
func WithSelectorOptions(opts ...boxcluster.SelectorOption) Option {
	return func(rn *Runner) {
		rn.selectorOpts = opts
	}
}

// New returns a Runner reading and writing units through repo
func New(repo *boxio.Repository, newClusterer ClustererFactory, opts ...Option) *Runner {

	r := &Runner{
		repo:         repo,
		newClusterer: newClusterer,
		log:          log.Discard(),
		workers:      1,
		maxClusters:  DefaultMaxClusters,
		projection:   boxcluster.TopLeft,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.workers < 1 {
		r.workers = 1
	}

	return r
}

// Process consolidates the boxes of a single unit, writes the result file
// and renders the photo.  Errors are reported in the Result.
func (r *Runner) Process(unit string) (res Result) {

	start := time.Now()

	res = Result{Unit: unit, RunID: uuid.NewString()}
	entry := r.log.WithFields(log.Fields{"unit": unit, "run_id": res.RunID})

	defer func() {
		res.Elapsed = time.Since(start)

		if res.Err != nil {
			res.Error = res.Err.Error()
			entry.WithError(res.Err).Error("unit failed")
			return
		}

		entry.WithFields(log.Fields{
			"k":          res.K,
			"detections": res.Detections,
			"elapsed":    res.Elapsed,
		}).Info("unit processed")
	}()

	parsed, err := r.repo.Load(unit)

	if err != nil {
		res.Err = err
		return res
	}

	res.Detections = len(parsed.Detections)
	res.Malformed = parsed.Malformed

	if len(parsed.Malformed) > 0 {
		entry.WithField("lines", parsed.Malformed).Warn("malformed box lines replaced with zero boxes")
	}

	clusterer := r.newClusterer()

	if closer, ok := clusterer.(io.Closer); ok {
		defer closer.Close()
	}

	points := boxcluster.ProjectAll(parsed.Detections, r.projection)
	labeling, err := boxcluster.NewSelector(clusterer, r.selectorOpts...).Select(points, r.maxClusters)

	if err != nil {
		res.Err = errors.Wrapf(err, "error selecting clusters of %s", unit)
		return res
	}

	res.Trace = labeling.Trace

	for _, trial := range labeling.Trace {
		entry.WithFields(log.Fields{"k": trial.K, "compactness": trial.Compactness}).Debug("trial")
	}

	boxes, err := boxcluster.Reduce(parsed.Detections, labeling.Labels, labeling.K)

	if err != nil {
		res.Err = errors.Wrapf(err, "error reducing clusters of %s", unit)
		return res
	}

	if err := r.repo.Store(unit, boxes); err != nil {
		res.Err = err
		return res
	}

	res.K = labeling.K
	res.Boxes = boxes

	if r.renderer == nil {
		return res
	}

	dst := r.repo.AnnotatedPath(unit)

	err = r.renderer.Render(r.repo.ImagePath(unit), dst, boxcluster.Annotation{
		Chosen:     boxes,
		Detections: parsed.Detections,
		Labels:     labeling.Labels,
	})

	if err != nil {
		res.Err = errors.Wrapf(err, "error rendering %s", unit)
		return res
	}

	res.Annotated = dst

	return res
}

// Run prepares the output directory then processes every unit, up to the
// configured number at a time.  Results keep the order of units.  Only a
// failure to prepare the output directory is returned as an error, unit
// failures are recorded in the report.
func (r *Runner) Run(units []string) (Report, error) {

	report := Report{Started: time.Now()}

	if err := r.repo.Prepare(); err != nil {
		return report, err
	}

	report.Results = make([]Result, len(units))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			report.Results[i] = r.Process(unit)
			return nil
		})
	}

	// workers never return an error
	_ = g.Wait()

	report.Elapsed = time.Since(report.Started)

	for _, res := range report.Results {
		if res.Err != nil {
			report.Failed++
		}
	}

	r.log.WithFields(log.Fields{
		"units":   len(units),
		"failed":  report.Failed,
		"elapsed": report.Elapsed,
	}).Info("batch finished")

	return report, nil
}
