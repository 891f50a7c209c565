package github

import (
	"context"
	"log/slog"

	"github.com/isometry/gh-cleanowners-app/internal/controllers/aws"
	"github.com/isometry/gh-cleanowners-app/internal/controllers/vault"
)

// WithToken sets the personal access token for the Controller instance.
func WithToken(token string) GHOption {
	return func(a *Controller) {
		a.Token = token
	}
}

// WithApp sets the GitHub App credentials for the Controller instance.
func WithApp(appID, installationID int64, privateKey string) GHOption {
	return func(a *Controller) {
		a.AppID = appID
		a.InstallationID = installationID
		a.PrivateKey = privateKey
	}
}

// WithAuthMode sets the authentication mode for a Controller instance using the given mode string.
func WithAuthMode(mode string) GHOption {
	return func(a *Controller) {
		a.authMode = mode
	}
}

// WithAWSController sets the awsController field of a Controller instance with the provided Controller instance.
func WithAWSController(aws *aws.Controller) GHOption {
	return func(a *Controller) {
		a.awsController = aws
	}
}

// WithSSMKey sets the SSM key used for fetching credentials and applies it to the Controller instance.
func WithSSMKey(key string) GHOption {
	return func(a *Controller) {
		a.ssmKey = key
	}
}

// WithVaultController sets the Vault controller and the KV v2 secret holding the credentials.
func WithVaultController(v *vault.Controller, mount, path string) GHOption {
	return func(a *Controller) {
		a.vaultController = v
		a.vaultMount = mount
		a.vaultPath = path
	}
}

// WithEnterpriseURL points the clients at a GitHub Enterprise Server instance.
func WithEnterpriseURL(url string) GHOption {
	return func(a *Controller) {
		a.enterpriseURL = url
	}
}

// WithCommitMode selects how file updates are committed, CommitModeREST or CommitModeGraphQL.
func WithCommitMode(mode string) GHOption {
	return func(a *Controller) {
		a.commitMode = mode
	}
}

// WithMaxRetries bounds the retries of idempotent reads.
func WithMaxRetries(n uint64) GHOption {
	return func(a *Controller) {
		a.maxRetries = n
	}
}

// WithClients uses pre-built clients instead of spawning them from credentials.
func WithClients(clients *Client) GHOption {
	return func(a *Controller) {
		a.clients = clients
	}
}

// WithContext sets the context used for credential retrieval.
func WithContext(ctx context.Context) GHOption {
	return func(a *Controller) {
		a.ctx = ctx
	}
}

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) GHOption {
	return func(a *Controller) {
		a.logger = logger
	}
}
