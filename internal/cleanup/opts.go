package cleanup

import (
	"log/slog"

	"github.com/isometry/gh-cleanowners-app/internal/codeowners"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used by the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithLocator overrides the CODEOWNERS locator.
func WithLocator(locator *codeowners.Locator) Option {
	return func(p *Pipeline) {
		p.locator = locator
	}
}

// WithOrganization scans every repository of the organization and checks membership against it.
func WithOrganization(org string) Option {
	return func(p *Pipeline) {
		p.organization = org
	}
}

// WithRepositories restricts the run to the given owner/name repositories.
func WithRepositories(repos []string) Option {
	return func(p *Pipeline) {
		p.repositories = repos
	}
}

// WithExemptRepositories skips the given owner/name repositories.
func WithExemptRepositories(repos []string) Option {
	return func(p *Pipeline) {
		p.exempt = repos
	}
}

// WithDryRun reports stale users without rewriting files or opening pull requests.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

// WithIssueOnParseFailure opens an issue on repositories whose CODEOWNERS file cannot be decoded.
func WithIssueOnParseFailure(enabled bool) Option {
	return func(p *Pipeline) {
		p.issueOnParseFailure = enabled
	}
}

// WithPullRequest sets the title, body and commit message of proposed changes.
func WithPullRequest(title, body, commitMessage string) Option {
	return func(p *Pipeline) {
		p.title = title
		p.body = body
		p.commitMessage = commitMessage
	}
}
