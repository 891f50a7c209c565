// Package report renders the Markdown summary of a cleanup run and stores it.
package report

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/isometry/gh-cleanowners-app/internal/cleanup"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/pkg/errors"

	_ "embed"
)

const contentType = "text/markdown; charset=utf-8"

//go:embed templates/report.md.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Funcs(StandardFuncs).Parse(reportTemplate))

// Render writes the Markdown report of r to w.
func Render(w io.Writer, r *cleanup.Report) error {
	if err := tmpl.Execute(w, r); err != nil {
		return errors.Wrap(err, "failed to execute report template")
	}
	return nil
}

// Uploader stores a rendered report remotely.
type Uploader interface {
	PutS3Object(key, bucket string, body []byte, contentType string) error
}

// Writer persists rendered reports to a local file and, optionally, to an S3 bucket.
type Writer struct {
	path     string
	bucket   string
	uploader Uploader
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithUploader uploads every report to bucket through uploader.
func WithUploader(uploader Uploader, bucket string) Option {
	return func(w *Writer) {
		w.uploader = uploader
		w.bucket = bucket
	}
}

// WithClock overrides the time used to name uploaded reports.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// WithLogger sets the Writer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter returns a Writer writing reports to path. An empty path skips the local file.
func NewWriter(path string, opts ...Option) *Writer {
	w := &Writer{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = helpers.NewNoopLogger()
	}
	return w
}

// Write renders r and stores it. Uploaded reports are keyed by UTC timestamp and file name.
func (w *Writer) Write(r *cleanup.Report) error {
	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		return err
	}

	if w.path != "" {
		if err := os.WriteFile(w.path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // report is not sensitive
			return errors.Wrapf(err, "failed to write report to %s", w.path)
		}
		w.logger.Info("wrote report", slog.String("path", w.path))
	}

	if w.uploader != nil && w.bucket != "" {
		name := "report.md"
		if w.path != "" {
			name = filepath.Base(w.path)
		}
		key := w.now().UTC().Format(time.RFC3339) + "/" + name
		if err := w.uploader.PutS3Object(key, w.bucket, buf.Bytes(), contentType); err != nil {
			return errors.Wrap(err, "failed to upload report")
		}
		w.logger.Info("uploaded report", slog.String("bucket", w.bucket), slog.String("key", key))
	}
	return nil
}
