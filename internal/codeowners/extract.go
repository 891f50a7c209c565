package codeowners

import (
	"log/slog"
	"strings"

	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/isometry/gh-cleanowners-app/internal/models"
)

const (
	// ParseFailureTitle is the title of the issue opened when a CODEOWNERS file cannot be parsed.
	ParseFailureTitle = "⚠️ Unable to parse CODEOWNERS file"
	// ParseFailureBody is the body of the issue opened when a CODEOWNERS file cannot be parsed.
	ParseFailureBody = "The `CODEOWNERS` file in this repository could not be parsed due to encoding or binary content issues.\n\n" +
		"Please ensure it is saved as a plain UTF-8 encoded text file, and re-commit it.\n\n" +
		"This is needed for tools like the cleanowners GitHub App to verify ownership and suggest valid maintainers."
)

// Handle is a user or team reference found in a CODEOWNERS rule, without the leading @.
type Handle string

// IsTeam reports whether the handle references an org/team.
func (h Handle) IsTeam() bool {
	return strings.Contains(string(h), "/")
}

func (h Handle) String() string {
	return string(h)
}

// IssueOpener opens an issue on the repository being processed.
type IssueOpener func(title, body string) error

// ExtractOption configures ExtractHandles.
type ExtractOption func(*extractor)

type extractor struct {
	ignoreTeams bool
	repository  string
	openIssue   IssueOpener
	logger      *slog.Logger
}

// WithTeams includes team handles in the result.
func WithTeams() ExtractOption {
	return func(e *extractor) {
		e.ignoreTeams = false
	}
}

// WithRepository sets the repository name used for parse failure reporting.
func WithRepository(fullName string) ExtractOption {
	return func(e *extractor) {
		e.repository = fullName
	}
}

// WithIssueOpener sets the callback invoked once when the content cannot be decoded.
func WithIssueOpener(fn IssueOpener) ExtractOption {
	return func(e *extractor) {
		e.openIssue = fn
	}
}

// WithLogger sets the logger used to report parse failures.
func WithLogger(logger *slog.Logger) ExtractOption {
	return func(e *extractor) {
		e.logger = logger
	}
}

// ExtractHandles returns the handles referenced by the rule lines of content, in order of appearance.
// Every substring following an @ up to the next whitespace is a handle.
// Duplicates are kept. Content that cannot be decoded yields no handles.
func ExtractHandles(content models.Content, opts ...ExtractOption) []Handle {
	e := &extractor{ignoreTeams: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = helpers.NewNoopLogger()
	}

	raw, err := Normalize(content)
	if err != nil {
		e.reportFailure(err)
		return []Handle{}
	}

	handles := []Handle{}
	for line := range strings.Lines(string(raw)) {
		trimmed := strings.TrimSpace(strings.ToValidUTF8(line, ""))
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		for _, h := range lineHandles(trimmed) {
			if h.IsTeam() && e.ignoreTeams {
				continue
			}
			handles = append(handles, h)
		}
	}
	return handles
}

// lineHandles returns, for every @ in line, the first whitespace-delimited word that follows it.
// A trailing @ or one followed only by whitespace yields nothing.
func lineHandles(line string) []Handle {
	pieces := strings.Split(line, "@")
	handles := make([]Handle, 0, len(pieces)-1)
	for _, piece := range pieces[1:] {
		words := strings.Fields(piece)
		if len(words) == 0 {
			continue
		}
		handles = append(handles, Handle(words[0]))
	}
	return handles
}

func (e *extractor) reportFailure(err error) {
	repository := e.repository
	if repository == "" {
		repository = "unknown repository"
	}
	logger := e.logger.With(slog.String("repository", repository))
	logger.Error("failed to decode CODEOWNERS file", slog.Any("error", err))

	if e.repository == "" || e.openIssue == nil {
		return
	}
	if issueErr := e.openIssue(ParseFailureTitle, ParseFailureBody); issueErr != nil {
		logger.Warn("failed to open parse failure issue", slog.Any("error", issueErr))
	}
}

// Users returns the non-team handles of handles.
func Users(handles []Handle) []Handle {
	users := make([]Handle, 0, len(handles))
	for _, h := range handles {
		if !h.IsTeam() {
			users = append(users, h)
		}
	}
	return users
}
