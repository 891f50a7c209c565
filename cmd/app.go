package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/isometry/gh-cleanowners-app/internal/cleanup"
	"github.com/isometry/gh-cleanowners-app/internal/codeowners"
	"github.com/isometry/gh-cleanowners-app/internal/config"
	"github.com/isometry/gh-cleanowners-app/internal/controllers/aws"
	"github.com/isometry/gh-cleanowners-app/internal/controllers/github"
	"github.com/isometry/gh-cleanowners-app/internal/controllers/vault"
	"github.com/isometry/gh-cleanowners-app/internal/report"
	"github.com/isometry/gh-cleanowners-app/internal/runtime"
	"github.com/pkg/errors"
)

// setup validates the configuration and wires the controllers into a runtime.
func setup(ctx context.Context, stats io.Writer) (*runtime.Runtime, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	authMode := strings.ToLower(config.GitHub.AuthMode)
	var awsController *aws.Controller
	if authMode == "ssm" || config.Report.S3.Enabled {
		logger.Debug("creating AWS controller...")
		var err error
		awsController, err = aws.NewController(
			aws.WithContext(ctx),
			aws.WithLogger(logger),
			aws.WithS3PathStyle(config.Report.S3.PathStyle),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
	}

	ghOpts := []github.GHOption{
		github.WithContext(ctx),
		github.WithLogger(logger.With("component", "github")),
		github.WithAuthMode(authMode),
		github.WithToken(config.GitHub.Token),
		github.WithApp(config.GitHub.AppID, config.GitHub.InstallationID, config.GitHub.PrivateKey),
		github.WithSSMKey(config.GitHub.SSMKey),
		github.WithAWSController(awsController),
		github.WithEnterpriseURL(config.GitHub.EnterpriseURL),
		github.WithCommitMode(config.GitHub.CommitMode),
		github.WithMaxRetries(config.GitHub.MaxRetries),
	}
	if authMode == "vault" {
		logger.Debug("creating Vault controller...")
		vaultController, err := vault.NewController(vault.WithLogger(logger))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Vault controller")
		}
		ghOpts = append(ghOpts, github.WithVaultController(vaultController, config.GitHub.Vault.Mount, config.GitHub.Vault.Path))
	}

	logger.Debug("creating GitHub controller...")
	ghController, err := github.NewController(ghOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GitHub controller")
	}
	if err = ghController.RetrieveCredentials(); err != nil {
		return nil, errors.Wrap(err, "failed to retrieve GitHub credentials")
	}

	pipelineLogger := logger.With("component", "cleanup")
	driver := cleanup.NewChangeDriver(ghController, cleanup.WithDriverLogger(pipelineLogger))
	locatorOpts := []codeowners.LocatorOption{codeowners.WithLocatorLogger(pipelineLogger)}
	if config.Cleanup.FirstMatch {
		locatorOpts = append(locatorOpts, codeowners.WithFirstMatch())
	}
	pipeline := cleanup.NewPipeline(ghController, driver,
		cleanup.WithLogger(pipelineLogger),
		cleanup.WithLocator(codeowners.NewLocator(ghController, locatorOpts...)),
		cleanup.WithOrganization(config.Cleanup.Organization),
		cleanup.WithRepositories(config.Cleanup.Repositories),
		cleanup.WithExemptRepositories(config.Cleanup.ExemptRepositories),
		cleanup.WithDryRun(config.Cleanup.DryRun),
		cleanup.WithIssueOnParseFailure(config.Cleanup.IssueOnParseFailure),
		cleanup.WithPullRequest(config.Cleanup.Title, config.Cleanup.Body, config.Cleanup.CommitMessage),
	)

	rtOpts := []runtime.Option{
		runtime.WithLogger(logger.With("component", "runtime")),
		runtime.WithRateLimitLogger(ghController),
		runtime.WithStatsOutput(stats),
	}
	if config.Report.Enabled || config.Report.S3.Enabled {
		path := ""
		if config.Report.Enabled {
			path = config.Report.Path
		}
		writerOpts := []report.Option{report.WithLogger(logger.With("component", "report"))}
		if config.Report.S3.Enabled {
			writerOpts = append(writerOpts, report.WithUploader(awsController, config.Report.S3.Bucket))
		}
		rtOpts = append(rtOpts, runtime.WithReportWriter(report.NewWriter(path, writerOpts...)))
	}

	logger.Debug("runtime ready",
		slog.String("organization", config.Cleanup.Organization),
		slog.Any("repositories", config.Cleanup.Repositories),
		slog.Bool("dryRun", config.Cleanup.DryRun))
	return runtime.NewRuntime(pipeline, rtOpts...), nil
}
