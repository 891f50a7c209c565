package cleanup

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
)

// RunStatistics holds the counters of a single run. It is created at run start and only incremented.
type RunStatistics struct {
	PullRequests   int `json:"pullRequests" yaml:"pullRequests"`
	Eligible       int `json:"eligible" yaml:"eligible"`
	NoCodeowners   int `json:"noCodeowners" yaml:"noCodeowners"`
	WithCodeowners int `json:"withCodeowners" yaml:"withCodeowners"`
	StaleUsers     int `json:"staleUsers" yaml:"staleUsers"`
}

// PullRequestRatio is the percentage of eligible repositories that received a pull request.
// ok is false when no repository was eligible.
func (s RunStatistics) PullRequestRatio() (pct float64, ok bool) {
	return percentage(s.PullRequests, s.Eligible)
}

// CodeownersRatio is the percentage of processed repositories that have a CODEOWNERS file.
// ok is false when no repository was processed.
func (s RunStatistics) CodeownersRatio() (pct float64, ok bool) {
	return percentage(s.WithCodeowners, s.WithCodeowners+s.NoCodeowners)
}

func percentage(part, whole int) (float64, bool) {
	if whole == 0 {
		return 0, false
	}
	rounded, err := stats.Round(float64(part)/float64(whole)*100, 2)
	if err != nil {
		return 0, false
	}
	return rounded, true
}

// FormatPercent renders a rounded percentage keeping one decimal for whole numbers, e.g. 50.0 or 66.67.
func FormatPercent(pct float64) string {
	if pct == math.Trunc(pct) {
		return strconv.FormatFloat(pct, 'f', 1, 64)
	}
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

// PrintStats writes the human-readable run summary to w.
func PrintStats(w io.Writer, s RunStatistics) {
	_, _ = fmt.Fprintf(w, "Found %d users to remove\n", s.StaleUsers)
	_, _ = fmt.Fprintf(w, "Created %d pull requests successfully\n", s.PullRequests)
	_, _ = fmt.Fprintf(w, "Skipped %d repositories without a CODEOWNERS file\n", s.NoCodeowners)
	_, _ = fmt.Fprintf(w, "Processed %d repositories with a CODEOWNERS file\n", s.WithCodeowners)
	if pct, ok := s.PullRequestRatio(); ok {
		_, _ = fmt.Fprintf(w, "%s%% of eligible repositories had pull requests created\n", FormatPercent(pct))
	} else {
		_, _ = fmt.Fprintln(w, "No pull requests were needed")
	}
	if pct, ok := s.CodeownersRatio(); ok {
		_, _ = fmt.Fprintf(w, "%s%% of repositories had CODEOWNERS files\n", FormatPercent(pct))
	} else {
		_, _ = fmt.Fprintln(w, "No repositories were processed")
	}
}
