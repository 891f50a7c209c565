// Package vault reads secrets from a HashiCorp Vault KV v2 engine.
package vault

import (
	"context"
	"log/slog"

	"github.com/hashicorp/vault/api"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/pkg/errors"
)

// Controller wraps a Vault API client.
type Controller struct {
	logger *slog.Logger
	config *api.Config
	token  string
	client *api.Client
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the Controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithAddress overrides VAULT_ADDR.
func WithAddress(address string) Option {
	return func(c *Controller) {
		if c.config == nil {
			c.config = api.DefaultConfig()
		}
		c.config.Address = address
	}
}

// WithToken overrides VAULT_TOKEN.
func WithToken(token string) Option {
	return func(c *Controller) {
		c.token = token
	}
}

// NewController returns a Controller configured from the standard VAULT_* environment variables and opts.
func NewController(opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("component", "vault")
	if _inst.config == nil {
		_inst.config = api.DefaultConfig()
	}
	if _inst.config.Error != nil {
		return nil, errors.Wrap(_inst.config.Error, "failed to read Vault configuration")
	}

	client, err := api.NewClient(_inst.config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Vault client")
	}
	if _inst.token != "" {
		client.SetToken(_inst.token)
	}
	_inst.client = client
	return _inst, nil
}

// GetSecret returns the data of the latest version of the secret at path in the KV v2 engine mounted at mount.
func (c *Controller) GetSecret(ctx context.Context, mount, path string) (map[string]any, error) {
	c.logger.Debug("fetching Vault secret...", slog.String("mount", mount), slog.String("path", path))
	secret, err := c.client.KVv2(mount).Get(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read secret %s/%s", mount, path)
	}
	return secret.Data, nil
}
