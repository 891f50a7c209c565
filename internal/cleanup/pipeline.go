// Package cleanup reconciles CODEOWNERS files with organization membership and proposes removals.
package cleanup

import (
	"context"
	"log/slog"
	"slices"

	"github.com/isometry/gh-cleanowners-app/internal/codeowners"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/isometry/gh-cleanowners-app/internal/models"
	"github.com/pkg/errors"
)

var (
	// ErrNoTargets is returned when neither an organization nor a repository list is configured.
	ErrNoTargets = errors.New("an organization or a repository list is required")
	// ErrOrganizationNotFound is returned when the organization to scan does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
)

// Directory is the read side of the hosting service consumed by the pipeline.
// Lookups of missing resources return a nil result and a nil error.
type Directory interface {
	codeowners.FileReader
	Organization(ctx context.Context, name string) (*models.Organization, error)
	IsMember(ctx context.Context, org, user string) (bool, error)
	Repositories(ctx context.Context, org string) ([]*models.Repository, error)
	Repository(ctx context.Context, owner, name string) (*models.Repository, error)
	Blob(ctx context.Context, repo *models.Repository, sha string) ([]byte, error)
	CreateIssue(ctx context.Context, repo *models.Repository, title, body string) (*models.Issue, error)
}

// StaleEntry pairs a repository with the users to remove from its CODEOWNERS file.
type StaleEntry struct {
	Repository *models.Repository
	Users      []codeowners.Handle
}

// FailedEntry is a repository whose processing stopped on an unexpected error.
type FailedEntry struct {
	Repository string
	Error      string
}

// Report is the outcome of a run handed to the reporting collaborators.
type Report struct {
	Stats        RunStatistics
	Stale        []StaleEntry
	Missing      []*models.Repository
	Failed       []FailedEntry
	PullRequests []*models.PullRequest
	DryRun       bool
}

// Pipeline sequences location, extraction, membership checks, rewrite and change proposal per repository.
type Pipeline struct {
	directory Directory
	locator   *codeowners.Locator
	driver    *ChangeDriver
	logger    *slog.Logger

	organization        string
	repositories        []string
	exempt              []string
	dryRun              bool
	issueOnParseFailure bool
	title, body         string
	commitMessage       string
}

// NewPipeline returns a Pipeline reading through directory and proposing changes through driver.
func NewPipeline(directory Directory, driver *ChangeDriver, opts ...Option) *Pipeline {
	p := &Pipeline{
		directory: directory,
		driver:    driver,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = helpers.NewNoopLogger()
	}
	if p.locator == nil {
		p.locator = codeowners.NewLocator(directory, codeowners.WithLocatorLogger(p.logger))
	}
	return p
}

// Run processes every target repository sequentially and returns the accumulated report.
// Only configuration problems are returned as errors; per-repository failures are logged and recorded.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{DryRun: p.dryRun}
	repos, err := p.targets(ctx, report)
	if err != nil {
		return nil, err
	}

	for _, repo := range repos {
		if err = ctx.Err(); err != nil {
			return report, errors.Wrap(err, "run interrupted")
		}
		if err = p.process(ctx, repo, report); err != nil {
			p.logger.Error("failed to process repository", slog.String("repository", repo.FullName()), slog.Any("error", err))
			report.Failed = append(report.Failed, FailedEntry{Repository: repo.FullName(), Error: err.Error()})
		}
	}
	return report, nil
}

func (p *Pipeline) targets(ctx context.Context, report *Report) ([]*models.Repository, error) {
	if p.organization == "" && len(p.repositories) == 0 {
		return nil, ErrNoTargets
	}

	if p.organization != "" && len(p.repositories) == 0 {
		org, err := p.directory.Organization(ctx, p.organization)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve organization %s", p.organization)
		}
		if org == nil {
			return nil, errors.Wrapf(ErrOrganizationNotFound, "%s is not an organization and no repository list was set", p.organization)
		}
		repos, err := p.directory.Repositories(ctx, org.Login)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list repositories of %s", org.Login)
		}
		return repos, nil
	}

	repos := make([]*models.Repository, 0, len(p.repositories))
	for _, fullName := range p.repositories {
		owner, name, ok := helpers.SplitFullName(fullName)
		if !ok {
			return nil, errors.Errorf("invalid repository %q: expected owner/name", fullName)
		}
		repo, err := p.directory.Repository(ctx, owner, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch repository %s", fullName)
		}
		if repo == nil {
			p.logger.Warn("repository not found", slog.String("repository", fullName))
			report.Failed = append(report.Failed, FailedEntry{Repository: fullName, Error: "repository not found"})
			continue
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (p *Pipeline) process(ctx context.Context, repo *models.Repository, report *Report) error {
	logger := p.logger.With(slog.String("repository", repo.FullName()))

	if slices.Contains(p.exempt, repo.FullName()) {
		logger.Info("skipping exempt repository")
		return nil
	}
	if repo.Archived {
		logger.Info("skipping archived repository")
		return nil
	}

	file, err := p.locator.Locate(ctx, repo)
	if err != nil {
		return err
	}
	if file == nil {
		logger.Info("skipping repository without a CODEOWNERS file")
		report.Stats.NoCodeowners++
		report.Missing = append(report.Missing, repo)
		return nil
	}
	report.Stats.WithCodeowners++
	logger = logger.With(slog.String("path", file.Path))

	if file.IsLarge() {
		logger.Debug("fetching large CODEOWNERS file by blob SHA", slog.String("sha", file.SHA))
		blob, err := p.directory.Blob(ctx, repo, file.SHA)
		if err != nil {
			return errors.Wrap(err, "failed to fetch CODEOWNERS blob")
		}
		file.Content = codeowners.Raw(blob)
	}

	extractOpts := []codeowners.ExtractOption{
		codeowners.WithRepository(repo.FullName()),
		codeowners.WithLogger(logger),
	}
	if p.issueOnParseFailure {
		extractOpts = append(extractOpts, codeowners.WithIssueOpener(func(title, body string) error {
			issue, err := p.directory.CreateIssue(ctx, repo, title, body)
			if err == nil && issue != nil {
				logger.Info("opened parse failure issue", slog.String("url", issue.HTMLURL))
			}
			return err
		}))
	}
	users := codeowners.ExtractHandles(file.Content, extractOpts...)
	if len(users) == 0 {
		return nil
	}

	stale, err := p.staleUsers(ctx, repo, users, logger)
	if len(stale) > 0 {
		report.Stats.StaleUsers += len(stale)
		report.Stale = append(report.Stale, StaleEntry{Repository: repo, Users: stale})
	}
	if err != nil {
		return err
	}
	if len(stale) == 0 || p.dryRun {
		return nil
	}

	report.Stats.Eligible++
	original, err := codeowners.Normalize(file.Content)
	if err != nil {
		return err
	}
	rewritten := codeowners.Rewrite(original, stale)
	if len(codeowners.ExtractHandles(codeowners.Raw(rewritten))) == 0 {
		logger.Warn("all usernames removed from CODEOWNERS")
	}

	pull, err := p.driver.Propose(ctx, ChangeRequest{
		Repository:    repo,
		Title:         p.title,
		Body:          p.body,
		CommitMessage: p.commitMessage,
		Path:          file.Path,
		SHA:           file.SHA,
		Content:       rewritten,
	})
	if err != nil {
		logger.Warn("failed to create pull request, check write permissions", slog.Any("error", err))
		return nil
	}
	report.Stats.PullRequests++
	report.PullRequests = append(report.PullRequests, pull)
	return nil
}

// staleUsers returns the users that are not members of the repository's organization.
// When the organization cannot be resolved no user can be judged. Users checked before a
// failed membership lookup are still returned.
func (p *Pipeline) staleUsers(ctx context.Context, repo *models.Repository, users []codeowners.Handle, logger *slog.Logger) ([]codeowners.Handle, error) {
	orgName := p.organization
	if orgName == "" {
		orgName = repo.Owner
	}

	org, err := p.directory.Organization(ctx, orgName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve organization %s", orgName)
	}
	if org == nil {
		logger.Warn("repository owner is not an organization", slog.String("owner", orgName))
		return nil, nil
	}

	var stale []codeowners.Handle
	for _, user := range users {
		member, err := p.directory.IsMember(ctx, org.Login, string(user))
		if err != nil {
			return stale, errors.Wrapf(err, "failed to check membership of %s", user)
		}
		if !member {
			logger.Info("user is not a member of the organization, suggest removing", slog.String("user", string(user)), slog.String("organization", org.Login))
			stale = append(stale, user)
		}
	}
	return stale, nil
}
