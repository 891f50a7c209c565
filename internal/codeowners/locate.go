package codeowners

import (
	"context"
	"log/slog"

	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/isometry/gh-cleanowners-app/internal/models"
	"github.com/pkg/errors"
)

// CandidatePaths are the locations probed for a CODEOWNERS file, in probe order.
var CandidatePaths = []string{".github/CODEOWNERS", "CODEOWNERS", "docs/CODEOWNERS"}

// FileReader reads a file from the default branch of a repository.
// A missing file is reported as a nil file and a nil error.
type FileReader interface {
	File(ctx context.Context, repo *models.Repository, path string) (*models.CodeownersFile, error)
}

// Locator finds the CODEOWNERS file of a repository.
type Locator struct {
	files      FileReader
	firstMatch bool
	logger     *slog.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithFirstMatch makes the first accepted candidate win instead of the last one.
func WithFirstMatch() LocatorOption {
	return func(l *Locator) {
		l.firstMatch = true
	}
}

// WithLocatorLogger sets the Locator logger.
func WithLocatorLogger(logger *slog.Logger) LocatorOption {
	return func(l *Locator) {
		l.logger = logger
	}
}

// NewLocator returns a Locator reading files through files.
func NewLocator(files FileReader, opts ...LocatorOption) *Locator {
	l := &Locator{files: files}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = helpers.NewNoopLogger()
	}
	return l
}

// Locate probes every candidate path and returns the accepted one, or nil when the repository
// has no non-empty CODEOWNERS file. Unless WithFirstMatch is set, a later candidate overrides
// an earlier one.
func (l *Locator) Locate(ctx context.Context, repo *models.Repository) (*models.CodeownersFile, error) {
	var found *models.CodeownersFile
	for _, path := range CandidatePaths {
		file, err := l.files.File(ctx, repo, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		if file == nil || file.Size <= 0 {
			l.logger.Debug("no usable CODEOWNERS candidate", slog.String("path", path))
			continue
		}
		found = file
		if l.firstMatch {
			break
		}
	}
	return found, nil
}
