// Package log builds the structured logger used by the command line tool
package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is an alias so callers need not import logrus for structured fields
type Fields = logrus.Fields

// Options configures the logger
type Options struct {
	// Level is a logrus level name such as "debug" or "info"
	Level string
	// File, when set, also writes the log to a size rotated file
	File string
	// NoColors disables terminal colours
	NoColors bool
	// Output defaults to stderr
	Output io.Writer
}

// New returns a logger writing nested formatted entries with the calling
// function attached
func New(opts Options) (*logrus.Logger, error) {

	level := logrus.InfoLevel

	if opts.Level != "" {
		var err error

		if level, err = logrus.ParseLevel(opts.Level); err != nil {
			return nil, err
		}
	}

	logger := logrus.New()
	logger.SetLevel(level)

	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		FieldsOrder:     []string{"unit", "run_id"},
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})

	out := opts.Output

	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{out}

	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetReportCaller(true)

	return logger, nil
}

// Discard returns a logger that drops every entry, for tests and library
// callers that do not want output
func Discard() *logrus.Logger {

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}
