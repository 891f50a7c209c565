package cmd

import (
	"github.com/isometry/gh-cleanowners-app/internal/config"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'run' and 'lambda'",
		Short:       helpers.Ptr("m"),
		Env:         helpers.Ptr("MODE"),
	},
	&config.GitHub.AuthMode: {
		Name:        "github-auth-mode",
		Description: "Authentication credentials provider. Supported values are 'token', 'app', 'ssm' and 'vault'",
		Short:       helpers.Ptr("A"),
		Env:         helpers.Ptr("GITHUB_AUTH_MODE"),
	},
	&config.GitHub.Token: {
		Name:        "github-token",
		Description: "Personal access token used in 'token' auth mode",
		Env:         helpers.Ptr("GH_TOKEN"),
		Hidden:      true,
	},
	&config.GitHub.PrivateKey: {
		Name:        "github-app-private-key",
		Description: "PEM encoded GitHub App private key used in 'app' auth mode",
		Env:         helpers.Ptr("GH_APP_PRIVATE_KEY"),
		Hidden:      true,
	},
	&config.GitHub.SSMKey: {
		Name:        "github-app-ssm-arn",
		Description: "The SSM parameter key to use when fetching GitHub credentials",
		Env:         helpers.Ptr("GITHUB_SSM_KEY"),
	},
	&config.GitHub.Vault.Mount: {
		Name:        "github-vault-mount",
		Description: "The Vault KV v2 mount holding the GitHub credentials",
		Env:         helpers.Ptr("GITHUB_VAULT_MOUNT"),
	},
	&config.GitHub.Vault.Path: {
		Name:        "github-vault-path",
		Description: "The Vault KV v2 secret path holding the GitHub credentials",
		Env:         helpers.Ptr("GITHUB_VAULT_PATH"),
	},
	&config.GitHub.EnterpriseURL: {
		Name:        "github-enterprise-url",
		Description: "Base URL of a GitHub Enterprise Server instance",
		Env:         helpers.Ptr("GH_ENTERPRISE_URL"),
	},
	&config.GitHub.CommitMode: {
		Name:        "github-commit-mode",
		Description: "How CODEOWNERS updates are committed. Supported values are 'rest' and 'graphql'",
		Env:         helpers.Ptr("GITHUB_COMMIT_MODE"),
	},
	&config.Cleanup.Organization: {
		Name:        "organization",
		Description: "The organization whose repositories are scanned and whose membership is checked",
		Short:       helpers.Ptr("o"),
		Env:         helpers.Ptr("ORGANIZATION"),
	},
	&config.Cleanup.Title: {
		Name:        "title",
		Description: "The title of the pull requests",
		Env:         helpers.Ptr("TITLE"),
	},
	&config.Cleanup.Body: {
		Name:        "body",
		Description: "The body of the pull requests",
		Env:         helpers.Ptr("BODY"),
	},
	&config.Cleanup.CommitMessage: {
		Name:        "commit-message",
		Description: "The commit message of the CODEOWNERS updates",
		Env:         helpers.Ptr("COMMIT_MESSAGE"),
	},
	&config.Report.Path: {
		Name:        "report-path",
		Description: "The path of the Markdown report",
		Env:         helpers.Ptr("REPORT_PATH"),
	},
	&config.Report.S3.Bucket: {
		Name:        "report-s3-bucket",
		Description: "The S3 bucket to upload the Markdown report to",
		Env:         helpers.Ptr("REPORT_S3_BUCKET"),
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Cleanup.DryRun: {
		Name:        "dry-run",
		Description: "Report the users to remove without changing any repository",
		Short:       helpers.Ptr("n"),
		Env:         helpers.Ptr("DRY_RUN"),
	},
	&config.Cleanup.FirstMatch: {
		Name:        "first-match",
		Description: "Use the first CODEOWNERS file found instead of the last",
		Env:         helpers.Ptr("FIRST_MATCH"),
	},
	&config.Cleanup.IssueOnParseFailure: {
		Name:        "issue-on-parse-failure",
		Description: "Open an issue on repositories whose CODEOWNERS file cannot be parsed",
		Env:         helpers.Ptr("ISSUE_ON_PARSE_FAILURE"),
	},
	&config.Report.Enabled: {
		Name:        "issue-report",
		Description: "Write a Markdown report of the run",
		Env:         helpers.Ptr("ISSUE_REPORT"),
	},
	&config.Report.S3.Enabled: {
		Name:        "report-s3-upload",
		Description: "Enable S3 upload of the Markdown report",
		Env:         helpers.Ptr("REPORT_S3_UPLOAD"),
	},
	&config.Report.S3.PathStyle: {
		Name:        "report-s3-path-style",
		Description: "Address the report bucket by path, for S3-compatible stores",
		Env:         helpers.Ptr("REPORT_S3_PATH_STYLE"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapInt64 = map[*int64]boundEnvVar[int64]{
	&config.GitHub.AppID: {
		Name:        "github-app-id",
		Description: "GitHub App ID used in 'app' auth mode",
		Env:         helpers.Ptr("GH_APP_ID"),
	},
	&config.GitHub.InstallationID: {
		Name:        "github-app-installation-id",
		Description: "GitHub App installation ID used in 'app' auth mode",
		Env:         helpers.Ptr("GH_APP_INSTALLATION_ID"),
	},
}

var envMapStringSlice = map[*[]string]boundEnvVar[[]string]{
	&config.Cleanup.Repositories: {
		Name:        "repository",
		Description: "Comma separated owner/name repositories to process instead of the whole organization",
		Short:       helpers.Ptr("r"),
		Env:         helpers.Ptr("REPOSITORY"),
	},
	&config.Cleanup.ExemptRepositories: {
		Name:        "exempt-repos",
		Description: "Comma separated owner/name repositories to skip",
		Env:         helpers.Ptr("EXEMPT_REPOS"),
	},
}
