package github

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-cleanowners-app/internal/codeowners"
	"github.com/isometry/gh-cleanowners-app/internal/models"
	"github.com/pkg/errors"
)

// retry runs an idempotent read with exponential backoff. Client errors other than 429 are not retried.
func (g *Controller) retry(ctx context.Context, op string, fn func() (*github.Response, error)) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.maxRetries), ctx)
	return backoff.Retry(func() error {
		resp, err := fn()
		if err == nil {
			return nil
		}
		if resp != nil && resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		g.logger.Debug("retrying request...", slog.String("op", op), slog.Any("error", err))
		return err
	}, policy)
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

func toRepository(r *github.Repository) *models.Repository {
	return &models.Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		DefaultBranch: r.GetDefaultBranch(),
		Archived:      r.GetArchived(),
		HTMLURL:       r.GetHTMLURL(),
	}
}

// File fetches a file through the contents API. A missing file or a directory yields nil.
// Files too large to be inlined are returned without content.
func (g *Controller) File(ctx context.Context, repo *models.Repository, path string) (*models.CodeownersFile, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return nil, err
	}
	var content *github.RepositoryContent
	err = g.retry(ctx, "contents", func() (resp *github.Response, err error) {
		content, _, resp, err = clients.V3.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, nil)
		return resp, err
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get contents of %s", path)
	}
	if content == nil || content.GetType() != "file" {
		return nil, nil
	}

	file := &models.CodeownersFile{
		Repository: repo,
		Path:       path,
		Size:       content.GetSize(),
		SHA:        content.GetSHA(),
	}
	if content.GetEncoding() != "none" {
		file.Content = codeowners.DecoderFunc(content.GetContent)
	}
	return file, nil
}

// Blob fetches raw blob content by SHA.
func (g *Controller) Blob(ctx context.Context, repo *models.Repository, sha string) ([]byte, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return nil, err
	}
	var blob []byte
	err = g.retry(ctx, "blob", func() (resp *github.Response, err error) {
		blob, resp, err = clients.V3.Git.GetBlobRaw(ctx, repo.Owner, repo.Name, sha)
		return resp, err
	})
	return blob, errors.Wrapf(err, "failed to get blob %s", sha)
}

// Organization resolves an organization by login. Users and unknown logins yield nil.
func (g *Controller) Organization(ctx context.Context, name string) (*models.Organization, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return nil, err
	}
	var org *github.Organization
	err = g.retry(ctx, "organization", func() (resp *github.Response, err error) {
		org, resp, err = clients.V3.Organizations.Get(ctx, name)
		return resp, err
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get organization %s", name)
	}
	return &models.Organization{Login: org.GetLogin()}, nil
}

// IsMember reports whether user is a member of org.
func (g *Controller) IsMember(ctx context.Context, org, user string) (bool, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return false, err
	}
	var member bool
	err = g.retry(ctx, "membership", func() (resp *github.Response, err error) {
		member, resp, err = clients.V3.Organizations.IsMember(ctx, org, user)
		return resp, err
	})
	return member, errors.Wrapf(err, "failed to check membership of %s in %s", user, org)
}

// Repositories lists every repository of org.
func (g *Controller) Repositories(ctx context.Context, org string) ([]*models.Repository, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return nil, err
	}
	var all []*models.Repository
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		var (
			repos []*github.Repository
			resp  *github.Response
		)
		err = g.retry(ctx, "repositories", func() (_ *github.Response, err error) {
			repos, resp, err = clients.V3.Repositories.ListByOrg(ctx, org, opts)
			return resp, err
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list repositories of %s", org)
		}
		for _, r := range repos {
			all = append(all, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	g.logger.Debug("listed repositories", slog.String("organization", org), slog.Int("count", len(all)))
	return all, nil
}

// Repository fetches a single repository. A missing repository yields nil.
func (g *Controller) Repository(ctx context.Context, owner, name string) (*models.Repository, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return nil, err
	}
	var repo *github.Repository
	err = g.retry(ctx, "repository", func() (resp *github.Response, err error) {
		repo, resp, err = clients.V3.Repositories.Get(ctx, owner, name)
		return resp, err
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get repository %s/%s", owner, name)
	}
	return toRepository(repo), nil
}

// CreateIssue opens an issue. It is never retried.
func (g *Controller) CreateIssue(ctx context.Context, repo *models.Repository, title, body string) (*models.Issue, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return nil, err
	}
	issue, _, err := clients.V3.Issues.Create(ctx, repo.Owner, repo.Name, &github.IssueRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create issue")
	}
	return &models.Issue{Number: issue.GetNumber(), HTMLURL: issue.GetHTMLURL()}, nil
}
