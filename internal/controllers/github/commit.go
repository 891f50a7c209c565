package github

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/isometry/gh-cleanowners-app/internal/models"
	"github.com/pkg/errors"
	"github.com/shurcooL/githubv4"
)

// HeadCommit returns the SHA of the commit at the tip of branch.
func (g *Controller) HeadCommit(ctx context.Context, repo *models.Repository, branch string) (string, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return "", err
	}
	var ref *github.Reference
	err = g.retry(ctx, "ref", func() (resp *github.Response, err error) {
		ref, resp, err = clients.V3.Git.GetRef(ctx, repo.Owner, repo.Name, helpers.HeadsRef(branch))
		return resp, err
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to get ref %s", branch)
	}
	return ref.GetObject().GetSHA(), nil
}

// CreateBranch creates branch pointing at sha.
func (g *Controller) CreateBranch(ctx context.Context, repo *models.Repository, branch, sha string) error {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return err
	}
	_, _, err = clients.V3.Git.CreateRef(ctx, repo.Owner, repo.Name, github.CreateRef{
		Ref: helpers.FullRef(branch),
		SHA: sha,
	})
	return errors.Wrap(err, "failed to create ref")
}

// UpdateFile commits new file content to a branch using the configured commit mode.
func (g *Controller) UpdateFile(ctx context.Context, repo *models.Repository, update models.FileUpdate) error {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return err
	}
	if g.commitMode == CommitModeGraphQL {
		oid, err := g.CommitOnBranch(ctx, clients, repo, update)
		if err != nil {
			return err
		}
		g.logger.Debug("created commit on branch", slog.String("oid", oid), slog.String("branch", update.Branch))
		return nil
	}

	_, _, err = clients.V3.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, update.Path, &github.RepositoryContentFileOptions{
		Message: github.Ptr(update.Message),
		Content: update.Content,
		SHA:     github.Ptr(update.SHA),
		Branch:  github.Ptr(update.Branch),
	})
	return errors.Wrapf(err, "failed to update %s", update.Path)
}

// CommitOnBranch commits a single file addition to the head of the branch using the GraphQL
// createCommitOnBranch mutation and returns the new commit OID. Commits created this way by an App are signed.
func (g *Controller) CommitOnBranch(ctx context.Context, clients *Client, repo *models.Repository, update models.FileUpdate) (string, error) {
	// Fetch the current head commit of the branch
	var query struct {
		Repository struct {
			Ref struct {
				Target struct {
					Oid githubv4.GitObjectID
				} `graphql:"target"`
			} `graphql:"ref(qualifiedName: $qualifiedName)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]any{
		"owner":         githubv4.String(repo.Owner),
		"name":          githubv4.String(repo.Name),
		"qualifiedName": githubv4.String(helpers.FullRef(update.Branch)),
	}
	if err := clients.V4.Query(ctx, &query, variables); err != nil {
		return "", errors.Wrap(err, "failed to query branch head")
	}

	input := githubv4.CreateCommitOnBranchInput{
		Branch: githubv4.CommittableBranch{
			RepositoryNameWithOwner: githubv4.NewString(githubv4.String(repo.FullName())),
			BranchName:              githubv4.NewString(githubv4.String(update.Branch)),
		},
		Message: githubv4.CommitMessage{
			Headline: githubv4.String(update.Message),
		},
		FileChanges: &githubv4.FileChanges{
			Additions: &[]githubv4.FileAddition{{
				Path:     githubv4.String(update.Path),
				Contents: githubv4.Base64String(base64.StdEncoding.EncodeToString(update.Content)),
			}},
		},
		ExpectedHeadOid: query.Repository.Ref.Target.Oid,
	}
	var mutation struct {
		CreateCommitOnBranch struct {
			Commit struct {
				Oid githubv4.GitObjectID
				URL githubv4.String
			}
		} `graphql:"createCommitOnBranch(input: $input)"`
	}
	if err := clients.V4.Mutate(ctx, &mutation, input, nil); err != nil {
		return "", errors.Wrap(err, "failed to create commit on branch")
	}
	return string(mutation.CreateCommitOnBranch.Commit.Oid), nil
}

// CreatePull opens a pull request. It is never retried.
func (g *Controller) CreatePull(ctx context.Context, repo *models.Repository, pull models.NewPull) (*models.PullRequest, error) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return nil, err
	}
	pr, _, err := clients.V3.PullRequests.Create(ctx, repo.Owner, repo.Name, &github.NewPullRequest{
		Title:               github.Ptr(pull.Title),
		Body:                github.Ptr(pull.Body),
		Head:                github.Ptr(pull.Head),
		Base:                github.Ptr(pull.Base),
		MaintainerCanModify: github.Ptr(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pull request")
	}
	return &models.PullRequest{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		Head:    pr.GetHead().GetRef(),
		Base:    pr.GetBase().GetRef(),
	}, nil
}
