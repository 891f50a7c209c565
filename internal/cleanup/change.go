package cleanup

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/isometry/gh-cleanowners-app/internal/models"
	"github.com/pkg/errors"
)

// BranchPrefix prefixes every branch created for a CODEOWNERS change.
const BranchPrefix = "codeowners-"

// Committer applies a change to a repository through its hosting service.
type Committer interface {
	HeadCommit(ctx context.Context, repo *models.Repository, branch string) (string, error)
	CreateBranch(ctx context.Context, repo *models.Repository, branch, sha string) error
	UpdateFile(ctx context.Context, repo *models.Repository, update models.FileUpdate) error
	CreatePull(ctx context.Context, repo *models.Repository, pull models.NewPull) (*models.PullRequest, error)
}

// ChangeRequest is a rewritten file to propose to a repository.
type ChangeRequest struct {
	Repository    *models.Repository
	Title, Body   string
	CommitMessage string
	Path          string
	// SHA is the blob SHA of the file being replaced.
	SHA     string
	Content []byte
}

// ChangeDriver turns a ChangeRequest into a branch, a commit and a pull request.
type ChangeDriver struct {
	committer  Committer
	branchName func() string
	logger     *slog.Logger
}

// DriverOption configures a ChangeDriver.
type DriverOption func(*ChangeDriver)

// WithBranchNamer overrides how branch names are generated.
func WithBranchNamer(fn func() string) DriverOption {
	return func(d *ChangeDriver) {
		d.branchName = fn
	}
}

// WithDriverLogger sets the ChangeDriver logger.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *ChangeDriver) {
		d.logger = logger
	}
}

// NewChangeDriver returns a ChangeDriver applying changes through committer.
func NewChangeDriver(committer Committer, opts ...DriverOption) *ChangeDriver {
	d := &ChangeDriver{
		committer: committer,
		branchName: func() string {
			return BranchPrefix + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = helpers.NewNoopLogger()
	}
	return d
}

// Propose branches off the default branch head, commits the new content and opens a pull request.
// A failed step is returned as is; a partially applied change is not rolled back or retried.
func (d *ChangeDriver) Propose(ctx context.Context, req ChangeRequest) (*models.PullRequest, error) {
	repo := req.Repository
	logger := d.logger.With(slog.String("repository", repo.FullName()))

	head, err := d.committer.HeadCommit(ctx, repo, repo.DefaultBranch)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read head of %s", repo.DefaultBranch)
	}

	branch := d.branchName()
	logger = logger.With(slog.String("branch", branch))
	logger.Debug("creating branch...", slog.String("sha", head))
	if err = d.committer.CreateBranch(ctx, repo, branch, head); err != nil {
		return nil, errors.Wrapf(err, "failed to create branch %s", branch)
	}

	logger.Debug("committing CODEOWNERS update...", slog.String("path", req.Path))
	if err = d.committer.UpdateFile(ctx, repo, models.FileUpdate{
		Path:    req.Path,
		Branch:  branch,
		Message: req.CommitMessage,
		Content: req.Content,
		SHA:     req.SHA,
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to update %s", req.Path)
	}

	pull, err := d.committer.CreatePull(ctx, repo, models.NewPull{
		Title: req.Title,
		Body:  req.Body,
		Head:  branch,
		Base:  repo.DefaultBranch,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pull request")
	}
	logger.Info("created pull request", slog.String("url", pull.HTMLURL))
	return pull, nil
}
