// Package github provides a Controller for GitHub operations and credentials management.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-cleanowners-app/internal/controllers/aws"
	"github.com/isometry/gh-cleanowners-app/internal/controllers/vault"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/pkg/errors"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const (
	// CommitModeREST updates files through the contents API.
	CommitModeREST = "rest"
	// CommitModeGraphQL updates files through the createCommitOnBranch mutation.
	CommitModeGraphQL = "graphql"

	defaultMaxRetries = 3
)

// GHOption is a functional option used to configure or modify the properties of a Controller instance.
type GHOption func(*Controller)

// NewController initializes a new Controller with the provided options, setting defaults where necessary.
func NewController(opts ...GHOption) (*Controller, error) {
	_inst := &Controller{
		commitMode: CommitModeREST,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With(slog.String("authMode", _inst.authMode))
	switch _inst.commitMode {
	case CommitModeREST, CommitModeGraphQL:
	default:
		return nil, fmt.Errorf("unsupported commit mode: %s", _inst.commitMode)
	}
	return _inst, nil
}

// Client holds the REST and GraphQL clients sharing one authenticated transport.
type Client struct {
	V3 *github.Client
	V4 *githubv4.Client
}

// Controller encapsulates GitHub operations and credentials management for various authentication modes.
type Controller struct {
	Credentials

	authMode      string
	ssmKey        string
	vaultMount    string
	vaultPath     string
	enterpriseURL string
	commitMode    string
	maxRetries    uint64

	ctx             context.Context
	logger          *slog.Logger
	awsController   *aws.Controller
	vaultController *vault.Controller
	clients         *Client
}

// Credentials is a helper struct to hold the GitHub credentials.
type Credentials struct {
	AppID          int64  `json:"app_id,omitempty"`
	InstallationID int64  `json:"installation_id,omitempty"`
	PrivateKey     string `json:"private_key,omitempty"`
	Token          string `json:"token,omitempty"`
}

// RetrieveCredentials fetches the GitHub credentials from the environment, SSM or Vault.
func (g *Controller) RetrieveCredentials() error {
	switch strings.TrimSpace(strings.ToLower(g.authMode)) {
	case "token":
		if g.Token == "" {
			return errors.New("missing [GH_TOKEN]")
		}
		return nil
	case "app":
		return g.validateAppCredentials()
	case "ssm":
		if g.awsController == nil {
			return errors.New("ssm auth mode requires an AWS controller")
		}
		g.logger.Debug("retrieving credentials from SSM...")
		secret, err := g.awsController.GetSecret(g.ssmKey, true)
		if err != nil {
			return errors.Wrap(err, "failed to fetch credentials from SSM")
		}
		if err = json.Unmarshal([]byte(*secret), &g.Credentials); err != nil {
			return errors.Wrap(err, "failed to unmarshal credentials")
		}
	case "vault":
		if g.vaultController == nil {
			return errors.New("vault auth mode requires a Vault controller")
		}
		g.logger.Debug("retrieving credentials from Vault...")
		data, err := g.vaultController.GetSecret(g.ctx, g.vaultMount, g.vaultPath)
		if err != nil {
			return errors.Wrap(err, "failed to fetch credentials from Vault")
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return errors.Wrap(err, "failed to marshal Vault secret")
		}
		if err = json.Unmarshal(raw, &g.Credentials); err != nil {
			return errors.Wrap(err, "failed to unmarshal credentials")
		}
	default:
		return fmt.Errorf("unsupported auth mode: %s", g.authMode)
	}
	if g.Token != "" {
		return nil
	}
	return g.validateAppCredentials()
}

func (g *Controller) validateAppCredentials() error {
	if g.AppID == 0 || g.InstallationID == 0 || g.PrivateKey == "" {
		return errors.New("missing [GH_APP_ID], [GH_APP_INSTALLATION_ID] or [GH_APP_PRIVATE_KEY]")
	}
	return nil
}

// GetGitHubClients returns the REST and GraphQL clients, spawning them on first use.
func (g *Controller) GetGitHubClients() (*Client, error) {
	if g.clients != nil {
		return g.clients, nil
	}

	roundTripper := &loggingRoundTripper{logger: g.logger}
	var base http.RoundTripper
	if g.Token != "" {
		g.logger.Debug("[GH_TOKEN] detected. Spawning clients using PAT...")
		base = &oauth2.Transport{
			Base:   roundTripper,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: g.Token}),
		}
	} else {
		g.logger.Debug("spawning clients using GitHub App credentials...", slog.Int64("installationId", g.InstallationID))
		transport, err := ghinstallation.New(roundTripper, g.AppID, g.InstallationID, []byte(g.PrivateKey))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create installation transport")
		}
		if g.enterpriseURL != "" {
			transport.BaseURL = g.apiURL()
		}
		base = transport
	}

	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(base)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rate limiter GitHub client")
	}

	clientV3 := github.NewClient(rateLimiter)
	clientV4 := githubv4.NewClient(rateLimiter)
	if g.enterpriseURL != "" {
		if clientV3, err = clientV3.WithEnterpriseURLs(g.apiURL(), g.uploadURL()); err != nil {
			return nil, errors.Wrap(err, "failed to configure GitHub Enterprise URLs")
		}
		clientV4 = githubv4.NewEnterpriseClient(g.apiURL()+"/graphql", rateLimiter)
	}

	g.clients = &Client{V3: clientV3, V4: clientV4}
	g.logger.Debug("successfully spawned clients...")
	return g.clients, nil
}

func (g *Controller) apiURL() string {
	return strings.TrimSuffix(g.enterpriseURL, "/") + "/api/v3"
}

func (g *Controller) uploadURL() string {
	return strings.TrimSuffix(g.enterpriseURL, "/") + "/api/uploads"
}

// LogRateLimits logs the remaining core API budget.
func (g *Controller) LogRateLimits(ctx context.Context) {
	clients, err := g.GetGitHubClients()
	if err != nil {
		return
	}
	limits, _, err := clients.V3.RateLimit.Get(ctx)
	if err != nil {
		g.logger.Warn("failed to fetch rate limits", slog.Any("error", err))
		return
	}
	core := limits.GetCore()
	g.logger.Info("rate limits", slog.Int("limit", core.Limit), slog.Int("remaining", core.Remaining), slog.Time("reset", core.Reset.Time))
}

type loggingRoundTripper struct {
	logger *slog.Logger
	next   http.RoundTripper
}

// RoundTrip logs the request and response, and the rate-limit headers at most once a minute.
func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var buf bytes.Buffer
	if req.Body != nil {
		_, _ = io.ReadAll(io.TeeReader(req.Body, &buf))
		req.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))
	}
	var container map[string]any
	_ = json.NewDecoder(&buf).Decode(&container)
	l.logger.Log(req.Context(), slog.Level(-8), "sending request", slog.String("method", req.Method), slog.String("url", req.URL.String()), slog.Any("body", container))

	next := l.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	if err != nil {
		l.logger.Log(req.Context(), slog.Level(-8), "failed to send request", slog.Any("error", err))
		return nil, err
	}
	l.logger.Log(req.Context(), slog.Level(-8), "received response", slog.Any("status", resp.Status))
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		helpers.OnceAMinute.Do(func() {
			l.logger.Debug("rate limit status",
				slog.String("remaining", remaining),
				slog.String("limit", resp.Header.Get("X-RateLimit-Limit")),
				slog.String("reset", resp.Header.Get("X-RateLimit-Reset")))
		})
	}
	return resp, nil
}
