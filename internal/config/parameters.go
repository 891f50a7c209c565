// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creasty/defaults"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"go.yaml.in/yaml/v3"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// GitHub is a struct that contains the configuration for GitHub.
	GitHub github
	// Cleanup is a struct that contains the configuration for the CODEOWNERS cleanup.
	Cleanup cleanup
	// Report is a struct that contains the configuration for the Markdown report.
	Report report
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"run"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type github struct {
	AuthMode       string `yaml:"authMode,omitempty" default:"token"`
	Token          string `yaml:"token,omitempty"`
	AppID          int64  `yaml:"appId,omitempty"`
	InstallationID int64  `yaml:"installationId,omitempty"`
	PrivateKey     string `yaml:"privateKey,omitempty"`
	SSMKey         string `yaml:"ssmKey,omitempty"`
	Vault          struct {
		Mount string `yaml:"mount,omitempty" default:"secret"`
		Path  string `yaml:"path,omitempty"`
	} `yaml:"vault,omitempty"`
	// EnterpriseURL is the base URL of a GitHub Enterprise Server instance, e.g. https://ghe.example.com.
	EnterpriseURL string `yaml:"enterpriseURL,omitempty"`
	// CommitMode is either rest or graphql.
	CommitMode string `yaml:"commitMode,omitempty" default:"rest"`
	MaxRetries uint64 `yaml:"maxRetries,omitempty" default:"3"`
}

type cleanup struct {
	Organization       string   `yaml:"organization,omitempty"`
	Repositories       []string `yaml:"repositories,omitempty"`
	ExemptRepositories []string `yaml:"exemptRepositories,omitempty"`
	DryRun             bool     `yaml:"dryRun,omitempty"`
	// FirstMatch stops at the first CODEOWNERS location found instead of the last.
	FirstMatch          bool   `yaml:"firstMatch,omitempty"`
	IssueOnParseFailure bool   `yaml:"issueOnParseFailure,omitempty" default:"true"`
	Title               string `yaml:"title,omitempty" default:"Clean up CODEOWNERS file"`
	Body                string `yaml:"body,omitempty" default:"Consider these updates to the CODEOWNERS file to remove users no longer in this organization."`
	CommitMessage       string `yaml:"commitMessage,omitempty" default:"Remove users no longer in this organization from CODEOWNERS file"`
}

type report struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty" default:"report.md"`
	S3      struct {
		Enabled   bool   `yaml:"enabled,omitempty"`
		Bucket    string `yaml:"bucket,omitempty"`
		PathStyle bool   `yaml:"pathStyle,omitempty"`
	} `yaml:"s3,omitempty"`
}

var (
	authModes   = []string{"token", "app", "ssm", "vault"}
	commitModes = []string{"rest", "graphql"}
)

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&GitHub),
		defaults.Set(&Cleanup),
		defaults.Set(&Report),
	)
}

// LoadFromFile loads the configuration from a file on top of the current values.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global  global  `yaml:"global,omitempty"`
		GitHub  github  `yaml:"github,omitempty"`
		Cleanup cleanup `yaml:"cleanup,omitempty"`
		Report  report  `yaml:"report,omitempty"`
	}
	a := all{Global: Global, GitHub: GitHub, Cleanup: Cleanup, Report: Report}
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	GitHub = a.GitHub
	Cleanup = a.Cleanup
	Report = a.Report

	return nil
}

// Validate reports every configuration problem found.
func Validate() error {
	var errs []error
	if Cleanup.Organization == "" && len(Cleanup.Repositories) == 0 {
		errs = append(errs, errors.New("ORGANIZATION and REPOSITORY environment variables were not set. Please set one"))
	}
	for _, repo := range Cleanup.Repositories {
		if _, _, ok := helpers.SplitFullName(repo); !ok {
			errs = append(errs, fmt.Errorf("invalid repository %q: expected owner/name", repo))
		}
	}
	if mode := strings.ToLower(GitHub.AuthMode); !slices.Contains(authModes, mode) {
		errs = append(errs, fmt.Errorf("unsupported auth mode %q: expected one of %s", GitHub.AuthMode, strings.Join(authModes, ", ")))
	}
	switch strings.ToLower(GitHub.AuthMode) {
	case "ssm":
		if GitHub.SSMKey == "" {
			errs = append(errs, errors.New("ssm auth mode requires an SSM key"))
		}
	case "vault":
		if GitHub.Vault.Path == "" {
			errs = append(errs, errors.New("vault auth mode requires a Vault secret path"))
		}
	}
	if !slices.Contains(commitModes, GitHub.CommitMode) {
		errs = append(errs, fmt.Errorf("unsupported commit mode %q: expected one of %s", GitHub.CommitMode, strings.Join(commitModes, ", ")))
	}
	if Report.S3.Enabled && Report.S3.Bucket == "" {
		errs = append(errs, errors.New("report S3 upload requires a bucket"))
	}
	return errors.Join(errs...)
}
