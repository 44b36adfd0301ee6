// Package config holds the settings of a batch run.  Values come from
// built in defaults, then an optional .env file and BOXCLUSTER_* environment
// variables, then command line flags, and are validated before use.
package config

import (
	"flag"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// EnvPrefix is prepended to the upper cased flag name to form the matching
// environment variable, eg. BOXCLUSTER_MAX_CLUSTERS
const EnvPrefix = "BOXCLUSTER_"

// Config is the configuration of a batch run
type Config struct {
	InputDir  string `validate:"required"`
	ImageDir  string `validate:"required"`
	OutputDir string `validate:"required"`
	ImageExt  string `validate:"required,startswith=."`

	// MaxClusters bounds the number of objects expected per photo
	MaxClusters int `validate:"gte=1"`
	// NumFiles is the number of units named 0..NumFiles-1, zero processes
	// every file in InputDir
	NumFiles int `validate:"gte=0"`
	// Workers is the number of units processed concurrently
	Workers int `validate:"gte=1"`

	Clusterer  string `validate:"oneof=gonum opencv"`
	Renderer   string `validate:"oneof=opencv raster none"`
	Projection string `validate:"oneof=topleft center"`

	Strict   bool
	Labels   bool
	Clusters bool
	Show     bool

	Highlight string `validate:"hexcolor"`
	Seed      int64

	ReportPath string
	LogLevel   string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile    string
}

// Default returns the settings of the standard photo run: five photos with
// up to ten objects each
func Default() Config {
	return Config{
		InputDir:    "../input",
		ImageDir:    "../img",
		OutputDir:   "../solutions",
		ImageExt:    ".png",
		MaxClusters: 10,
		NumFiles:    5,
		Workers:     1,
		Clusterer:   "gonum",
		Renderer:    "opencv",
		Projection:  "topleft",
		Highlight:   "#ffff00",
		Seed:        1,
		LogLevel:    "info",
	}
}

// Load builds the configuration from the environment and the given command
// line arguments, which exclude the program name
func Load(args []string) (Config, error) {

	// a missing .env file is not an error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Config{}, errors.Wrap(err, "error loading .env file")
	}

	cfg := Default()
	env := &envReader{}
	fs := flag.NewFlagSet("boxcluster", flag.ContinueOnError)

	fs.StringVar(&cfg.InputDir, "input", env.stringVal("input", cfg.InputDir), "Directory of detection box files")
	fs.StringVar(&cfg.ImageDir, "images", env.stringVal("images", cfg.ImageDir), "Directory of source photos")
	fs.StringVar(&cfg.OutputDir, "output", env.stringVal("output", cfg.OutputDir), "Directory results are written to")
	fs.StringVar(&cfg.ImageExt, "image-ext", env.stringVal("image_ext", cfg.ImageExt), "Photo file extension")
	fs.IntVar(&cfg.MaxClusters, "max-clusters", env.intVal("max_clusters", cfg.MaxClusters), "Maximum number of objects expected per photo")
	fs.IntVar(&cfg.NumFiles, "num-files", env.intVal("num_files", cfg.NumFiles), "Number of photos named 0..n-1, 0 processes every input file")
	fs.IntVar(&cfg.Workers, "workers", env.intVal("workers", cfg.Workers), "Photos processed concurrently")
	fs.StringVar(&cfg.Clusterer, "clusterer", env.stringVal("clusterer", cfg.Clusterer), "Clustering backend: gonum or opencv")
	fs.StringVar(&cfg.Renderer, "renderer", env.stringVal("renderer", cfg.Renderer), "Rendering backend: opencv, raster or none")
	fs.StringVar(&cfg.Projection, "projection", env.stringVal("projection", cfg.Projection), "Box point clustered by: topleft or center")
	fs.BoolVar(&cfg.Strict, "strict", env.boolVal("strict", cfg.Strict), "Reject malformed box lines instead of zeroing them")
	fs.BoolVar(&cfg.Labels, "labels", env.boolVal("labels", cfg.Labels), "Draw confidence labels on chosen boxes")
	fs.BoolVar(&cfg.Clusters, "clusters", env.boolVal("clusters", cfg.Clusters), "Draw every raw detection coloured by cluster")
	fs.BoolVar(&cfg.Show, "show", env.boolVal("show", cfg.Show), "Display annotated photos in a window")
	fs.StringVar(&cfg.Highlight, "highlight", env.stringVal("highlight", cfg.Highlight), "Hex colour of chosen box outlines")
	fs.Int64Var(&cfg.Seed, "seed", env.int64Val("seed", cfg.Seed), "Random seed of the gonum clusterer")
	fs.StringVar(&cfg.ReportPath, "report", env.stringVal("report", cfg.ReportPath), "Write a JSON run report to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", env.stringVal("log_level", cfg.LogLevel), "Log level")
	fs.StringVar(&cfg.LogFile, "log-file", env.stringVal("log_file", cfg.LogFile), "Also write the log to this rotated file")

	// flags override the environment but a set variable must still parse
	if env.err != nil {
		return Config{}, env.err
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every field holds an acceptable value
func (c Config) Validate() error {

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if _, err := c.HighlightColor(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return nil
}

// HighlightColor parses the hex highlight colour, given as #rgb or #rrggbb
func (c Config) HighlightColor() (color.RGBA, error) {

	// colours with an alpha channel are not drawn
	if len(c.Highlight) != 4 && len(c.Highlight) != 7 {
		return color.RGBA{}, errors.Errorf("invalid highlight colour %q", c.Highlight)
	}

	clr, err := colorful.Hex(c.Highlight)

	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid highlight colour %q", c.Highlight)
	}

	r, g, b := clr.RGB255()

	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func envKey(name string) string {
	return EnvPrefix + strings.ToUpper(name)
}

// envReader looks up BOXCLUSTER_* variables, remembering the first one
// that is set but does not parse
type envReader struct {
	err error
}

func (e *envReader) lookup(name string) (string, bool) {

	v, ok := os.LookupEnv(envKey(name))

	return v, ok && v != ""
}

func (e *envReader) fail(name, value string, err error) {

	if e.err == nil {
		e.err = errors.Wrapf(err, "invalid value %q for %s", value, envKey(name))
	}
}

func (e *envReader) stringVal(name, def string) string {

	if v, ok := e.lookup(name); ok {
		return v
	}

	return def
}

func (e *envReader) intVal(name string, def int) int {

	v, ok := e.lookup(name)

	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)

	if err != nil {
		e.fail(name, v, err)
		return def
	}

	return n
}

func (e *envReader) int64Val(name string, def int64) int64 {

	v, ok := e.lookup(name)

	if !ok {
		return def
	}

	n, err := strconv.ParseInt(v, 10, 64)

	if err != nil {
		e.fail(name, v, err)
		return def
	}

	return n
}

func (e *envReader) boolVal(name string, def bool) bool {

	v, ok := e.lookup(name)

	if !ok {
		return def
	}

	b, err := strconv.ParseBool(v)

	if err != nil {
		e.fail(name, v, err)
		return def
	}

	return b
}
