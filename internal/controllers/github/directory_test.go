package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v84/github"
	ghctl "github.com/isometry/gh-cleanowners-app/internal/controllers/github"
	"github.com/isometry/gh-cleanowners-app/internal/models"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRepo = &models.Repository{Owner: "org", Name: "repo", DefaultBranch: "main"}

// setupTestController creates a Controller that communicates with a mock HTTP server.
func setupTestController(t *testing.T, handler http.Handler, opts ...ghctl.GHOption) *ghctl.Controller {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL
	graphqlClient := githubv4.NewEnterpriseClient(server.URL+"/graphql", server.Client())

	opts = append([]ghctl.GHOption{ghctl.WithClients(&ghctl.Client{V3: restClient, V4: graphqlClient})}, opts...)
	ctl, err := ghctl.NewController(opts...)
	require.NoError(t, err)
	return ctl
}

func TestFile(t *testing.T) {
	testCases := []struct {
		Name            string
		Status          int
		Body            string
		ExpectNil       bool
		ExpectLarge     bool
		ExpectedContent string
		ExpectedSize    int
	}{
		{
			Name:            "inline",
			Status:          http.StatusOK,
			Body:            `{"type":"file","encoding":"base64","size":17,"sha":"abc","path":"CODEOWNERS","content":"Ki5nbyBAYWxpY2UgQGJvYgo="}`,
			ExpectedContent: "*.go @alice @bob\n",
			ExpectedSize:    17,
		},
		{
			Name:         "large",
			Status:       http.StatusOK,
			Body:         `{"type":"file","encoding":"none","size":2097152,"sha":"abc","path":"CODEOWNERS","content":""}`,
			ExpectLarge:  true,
			ExpectedSize: 2097152,
		},
		{
			Name:      "not_found",
			Status:    http.StatusNotFound,
			Body:      `{"message":"Not Found"}`,
			ExpectNil: true,
		},
		{
			Name:      "directory",
			Status:    http.StatusOK,
			Body:      `[{"type":"file","name":"README.md","path":"docs/CODEOWNERS/README.md"}]`,
			ExpectNil: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			ctl := setupTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/org/repo/contents/CODEOWNERS", r.URL.Path)
				w.WriteHeader(tc.Status)
				fmt.Fprint(w, tc.Body)
			}))

			file, err := ctl.File(context.Background(), testRepo, "CODEOWNERS")
			require.NoError(t, err)
			if tc.ExpectNil {
				assert.Nil(t, file)
				return
			}
			require.NotNil(t, file)
			assert.Equal(t, "abc", file.SHA)
			assert.Equal(t, tc.ExpectedSize, file.Size)
			assert.Equal(t, tc.ExpectLarge, file.IsLarge())
			if !tc.ExpectLarge {
				b, err := file.Content.Bytes()
				require.NoError(t, err)
				assert.Equal(t, tc.ExpectedContent, string(b))
			}
		})
	}
}

func TestRetry(t *testing.T) {
	testCases := []struct {
		Name          string
		FirstStatus   int
		ExpectedCalls int32
		ExpectError   bool
	}{
		{Name: "server_error_retried", FirstStatus: http.StatusBadGateway, ExpectedCalls: 2},
		{Name: "forbidden_not_retried", FirstStatus: http.StatusForbidden, ExpectedCalls: 1, ExpectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var calls atomic.Int32
			ctl := setupTestController(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(tc.FirstStatus)
					fmt.Fprint(w, `{"message":"nope"}`)
					return
				}
				fmt.Fprint(w, `{"login":"org"}`)
			}), ghctl.WithMaxRetries(1))

			org, err := ctl.Organization(context.Background(), "org")
			assert.Equal(t, tc.ExpectedCalls, calls.Load())
			if tc.ExpectError {
				assert.ErrorContains(t, err, "failed to get organization org")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &models.Organization{Login: "org"}, org)
		})
	}
}

func TestOrganizationAndMembership(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/org", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"login":"org"}`)
	})
	mux.HandleFunc("/orgs/someone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	mux.HandleFunc("/orgs/org/members/alice", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/orgs/org/members/bob", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ctl := setupTestController(t, mux)
	ctx := context.Background()

	org, err := ctl.Organization(ctx, "org")
	require.NoError(t, err)
	assert.Equal(t, "org", org.Login)

	org, err = ctl.Organization(ctx, "someone")
	require.NoError(t, err)
	assert.Nil(t, org)

	member, err := ctl.IsMember(ctx, "org", "alice")
	require.NoError(t, err)
	assert.True(t, member)

	member, err = ctl.IsMember(ctx, "org", "bob")
	require.NoError(t, err)
	assert.False(t, member)
}

func TestRepositories(t *testing.T) {
	ctl := setupTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orgs/org/repos", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "":
			w.Header().Set("Link", `<https://api.github.com/orgs/org/repos?page=2>; rel="next"`)
			fmt.Fprint(w, `[{"name":"a","owner":{"login":"org"},"default_branch":"main"}]`)
		case "2":
			fmt.Fprint(w, `[{"name":"b","owner":{"login":"org"},"default_branch":"trunk","archived":true}]`)
		}
	}))

	repos, err := ctl.Repositories(context.Background(), "org")

	require.NoError(t, err)
	assert.Equal(t, []*models.Repository{
		{Owner: "org", Name: "a", DefaultBranch: "main"},
		{Owner: "org", Name: "b", DefaultBranch: "trunk", Archived: true},
	}, repos)
}

func TestRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/org/repo", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"repo","owner":{"login":"org"},"default_branch":"main","html_url":"https://github.com/org/repo"}`)
	})
	mux.HandleFunc("/repos/org/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	ctl := setupTestController(t, mux)

	repo, err := ctl.Repository(context.Background(), "org", "repo")
	require.NoError(t, err)
	assert.Equal(t, &models.Repository{Owner: "org", Name: "repo", DefaultBranch: "main", HTMLURL: "https://github.com/org/repo"}, repo)

	repo, err = ctl.Repository(context.Background(), "org", "gone")
	require.NoError(t, err)
	assert.Nil(t, repo)
}

func TestBlobAndIssue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/org/repo/git/blobs/abc", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "* @alice\n")
	})
	mux.HandleFunc("/repos/org/repo/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "title", req["title"])
		assert.Equal(t, "body", req["body"])
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number":7,"html_url":"https://github.com/org/repo/issues/7"}`)
	})
	ctl := setupTestController(t, mux)

	blob, err := ctl.Blob(context.Background(), testRepo, "abc")
	require.NoError(t, err)
	assert.Equal(t, "* @alice\n", string(blob))

	issue, err := ctl.CreateIssue(context.Background(), testRepo, "title", "body")
	require.NoError(t, err)
	assert.Equal(t, &models.Issue{Number: 7, HTMLURL: "https://github.com/org/repo/issues/7"}, issue)
}

func TestCommitREST(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/org/repo/git/ref/heads/main", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ref":"refs/heads/main","object":{"sha":"abc123"}}`)
	})
	mux.HandleFunc("/repos/org/repo/git/refs", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]any{"ref": "refs/heads/codeowners-1", "sha": "abc123"}, req)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"ref":"refs/heads/codeowners-1","object":{"sha":"abc123"}}`)
	})
	mux.HandleFunc("/repos/org/repo/contents/CODEOWNERS", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ki5nbyBAYWxpY2UgCg==", req["content"])
		assert.Equal(t, "codeowners-1", req["branch"])
		assert.Equal(t, "blob-sha", req["sha"])
		assert.Equal(t, "commit message", req["message"])
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/repos/org/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "codeowners-1", req["head"])
		assert.Equal(t, "main", req["base"])
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number":3,"html_url":"https://github.com/org/repo/pull/3","head":{"ref":"codeowners-1"},"base":{"ref":"main"}}`)
	})
	ctl := setupTestController(t, mux)
	ctx := context.Background()

	head, err := ctl.HeadCommit(ctx, testRepo, "main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", head)
	require.NoError(t, ctl.CreateBranch(ctx, testRepo, "codeowners-1", head))
	require.NoError(t, ctl.UpdateFile(ctx, testRepo, models.FileUpdate{
		Path:    "CODEOWNERS",
		Branch:  "codeowners-1",
		Message: "commit message",
		Content: []byte("*.go @alice \n"),
		SHA:     "blob-sha",
	}))
	pull, err := ctl.CreatePull(ctx, testRepo, models.NewPull{Title: "t", Body: "b", Head: "codeowners-1", Base: "main"})
	require.NoError(t, err)
	assert.Equal(t, &models.PullRequest{Number: 3, HTMLURL: "https://github.com/org/repo/pull/3", Head: "codeowners-1", Base: "main"}, pull)
}

func TestCommitGraphQL(t *testing.T) {
	var mutations atomic.Int32
	ctl := setupTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if strings.Contains(string(body), "createCommitOnBranch") {
			mutations.Add(1)
			assert.Contains(t, string(body), `"expectedHeadOid":"abc123"`)
			assert.Contains(t, string(body), `"contents":"Ki5nbyBAYWxpY2UgCg=="`)
			assert.Contains(t, string(body), `"branchName":"codeowners-1"`)
			fmt.Fprint(w, `{"data":{"createCommitOnBranch":{"commit":{"oid":"def456","url":"https://github.com/org/repo/commit/def456"}}}}`)
			return
		}
		assert.Contains(t, string(body), "refs/heads/codeowners-1")
		fmt.Fprint(w, `{"data":{"repository":{"ref":{"target":{"oid":"abc123"}}}}}`)
	}), ghctl.WithCommitMode(ghctl.CommitModeGraphQL))

	err := ctl.UpdateFile(context.Background(), testRepo, models.FileUpdate{
		Path:    "CODEOWNERS",
		Branch:  "codeowners-1",
		Message: "commit message",
		Content: []byte("*.go @alice \n"),
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), mutations.Load())
}

func TestNewControllerCommitMode(t *testing.T) {
	_, err := ghctl.NewController(ghctl.WithCommitMode("ftp"))
	assert.ErrorContains(t, err, "unsupported commit mode")
}

func TestRetrieveCredentials(t *testing.T) {
	testCases := []struct {
		Name          string
		Opts          []ghctl.GHOption
		ExpectedError string
	}{
		{
			Name: "token",
			Opts: []ghctl.GHOption{ghctl.WithAuthMode("token"), ghctl.WithToken("ghp_x")},
		},
		{
			Name:          "token_missing",
			Opts:          []ghctl.GHOption{ghctl.WithAuthMode("token")},
			ExpectedError: "missing [GH_TOKEN]",
		},
		{
			Name: "app",
			Opts: []ghctl.GHOption{ghctl.WithAuthMode("app"), ghctl.WithApp(1, 2, "key")},
		},
		{
			Name:          "app_incomplete",
			Opts:          []ghctl.GHOption{ghctl.WithAuthMode("app"), ghctl.WithApp(1, 0, "key")},
			ExpectedError: "missing [GH_APP_ID]",
		},
		{
			Name:          "ssm_without_controller",
			Opts:          []ghctl.GHOption{ghctl.WithAuthMode("ssm")},
			ExpectedError: "requires an AWS controller",
		},
		{
			Name:          "unsupported",
			Opts:          []ghctl.GHOption{ghctl.WithAuthMode("carrier-pigeon")},
			ExpectedError: "unsupported auth mode",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			ctl, err := ghctl.NewController(tc.Opts...)
			require.NoError(t, err)
			err = ctl.RetrieveCredentials()
			if tc.ExpectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.ExpectedError)
		})
	}
}
