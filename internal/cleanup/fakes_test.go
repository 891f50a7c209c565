package cleanup_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/isometry/gh-cleanowners-app/internal/models"
)

var errNotPermitted = errors.New("404 Not Found")

type fakeDirectory struct {
	orgs        map[string][]string
	orgRepos    map[string][]*models.Repository
	repos       map[string]*models.Repository
	files       map[string]map[string]models.Content
	blobs       map[string][]byte
	issues      []string
	memberCalls []string
	memberErr   error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		orgs:     map[string][]string{},
		orgRepos: map[string][]*models.Repository{},
		repos:    map[string]*models.Repository{},
		files:    map[string]map[string]models.Content{},
		blobs:    map[string][]byte{},
	}
}

func (f *fakeDirectory) addRepo(repo *models.Repository, files map[string]models.Content) {
	f.repos[repo.FullName()] = repo
	f.orgRepos[repo.Owner] = append(f.orgRepos[repo.Owner], repo)
	f.files[repo.FullName()] = files
}

func (f *fakeDirectory) File(_ context.Context, repo *models.Repository, path string) (*models.CodeownersFile, error) {
	content, ok := f.files[repo.FullName()][path]
	if !ok {
		return nil, nil
	}
	file := &models.CodeownersFile{Repository: repo, Path: path, SHA: "sha-" + path}
	if content == nil {
		// too large for the contents API, served from blobs
		file.Size = len(f.blobs[file.SHA])
		return file, nil
	}
	b, err := content.Bytes()
	if err != nil {
		b = []byte("undecodable")
	}
	file.Size = len(b)
	file.Content = content
	return file, nil
}

func (f *fakeDirectory) Organization(_ context.Context, name string) (*models.Organization, error) {
	if _, ok := f.orgs[name]; !ok {
		return nil, nil
	}
	return &models.Organization{Login: name}, nil
}

func (f *fakeDirectory) IsMember(_ context.Context, org, user string) (bool, error) {
	f.memberCalls = append(f.memberCalls, org+":"+user)
	if f.memberErr != nil {
		return false, f.memberErr
	}
	for _, m := range f.orgs[org] {
		if m == user {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDirectory) Repositories(_ context.Context, org string) ([]*models.Repository, error) {
	return f.orgRepos[org], nil
}

func (f *fakeDirectory) Repository(_ context.Context, owner, name string) (*models.Repository, error) {
	return f.repos[owner+"/"+name], nil
}

func (f *fakeDirectory) Blob(_ context.Context, _ *models.Repository, sha string) ([]byte, error) {
	b, ok := f.blobs[sha]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", sha)
	}
	return b, nil
}

func (f *fakeDirectory) CreateIssue(_ context.Context, repo *models.Repository, title, _ string) (*models.Issue, error) {
	f.issues = append(f.issues, repo.FullName()+": "+title)
	return &models.Issue{Number: len(f.issues), HTMLURL: "https://github.com/" + repo.FullName() + "/issues/1"}, nil
}

type fakeCommitter struct {
	heads    map[string]string
	branches map[string]string
	updates  []models.FileUpdate
	pulls    []models.NewPull
	failOn   string
}

func newFakeCommitter() *fakeCommitter {
	return &fakeCommitter{heads: map[string]string{}, branches: map[string]string{}}
}

func (c *fakeCommitter) HeadCommit(_ context.Context, repo *models.Repository, branch string) (string, error) {
	if c.failOn == "head" {
		return "", errNotPermitted
	}
	if sha, ok := c.heads[repo.FullName()+"@"+branch]; ok {
		return sha, nil
	}
	return "head-" + branch, nil
}

func (c *fakeCommitter) CreateBranch(_ context.Context, repo *models.Repository, branch, sha string) error {
	if c.failOn == "branch" {
		return errNotPermitted
	}
	c.branches[repo.FullName()+"@"+branch] = sha
	return nil
}

func (c *fakeCommitter) UpdateFile(_ context.Context, _ *models.Repository, update models.FileUpdate) error {
	if c.failOn == "update" {
		return errNotPermitted
	}
	c.updates = append(c.updates, update)
	return nil
}

func (c *fakeCommitter) CreatePull(_ context.Context, repo *models.Repository, pull models.NewPull) (*models.PullRequest, error) {
	if c.failOn == "pull" {
		return nil, errNotPermitted
	}
	c.pulls = append(c.pulls, pull)
	return &models.PullRequest{
		Number:  len(c.pulls),
		HTMLURL: fmt.Sprintf("https://github.com/%s/pull/%d", repo.FullName(), len(c.pulls)),
		Head:    pull.Head,
		Base:    pull.Base,
	}, nil
}
