package cleanup_test

import (
	"bytes"
	"testing"

	"github.com/isometry/gh-cleanowners-app/internal/cleanup"
	"github.com/stretchr/testify/assert"
)

func TestPrintStats(t *testing.T) {
	testCases := []struct {
		Name     string
		Stats    cleanup.RunStatistics
		Expected string
	}{
		{
			Name:  "all_counts",
			Stats: cleanup.RunStatistics{PullRequests: 5, Eligible: 10, NoCodeowners: 2, WithCodeowners: 3, StaleUsers: 4},
			Expected: "Found 4 users to remove\n" +
				"Created 5 pull requests successfully\n" +
				"Skipped 2 repositories without a CODEOWNERS file\n" +
				"Processed 3 repositories with a CODEOWNERS file\n" +
				"50.0% of eligible repositories had pull requests created\n" +
				"60.0% of repositories had CODEOWNERS files\n",
		},
		{
			Name:  "no_pull_requests_needed",
			Stats: cleanup.RunStatistics{NoCodeowners: 2, WithCodeowners: 3, StaleUsers: 4},
			Expected: "Found 4 users to remove\n" +
				"Created 0 pull requests successfully\n" +
				"Skipped 2 repositories without a CODEOWNERS file\n" +
				"Processed 3 repositories with a CODEOWNERS file\n" +
				"No pull requests were needed\n" +
				"60.0% of repositories had CODEOWNERS files\n",
		},
		{
			Name: "no_repositories_processed",
			Expected: "Found 0 users to remove\n" +
				"Created 0 pull requests successfully\n" +
				"Skipped 0 repositories without a CODEOWNERS file\n" +
				"Processed 0 repositories with a CODEOWNERS file\n" +
				"No pull requests were needed\n" +
				"No repositories were processed\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var buf bytes.Buffer
			cleanup.PrintStats(&buf, tc.Stats)
			assert.Equal(t, tc.Expected, buf.String())
		})
	}
}

func TestFormatPercent(t *testing.T) {
	testCases := []struct {
		Name     string
		Part     int
		Whole    int
		Expected string
	}{
		{Name: "half", Part: 1, Whole: 2, Expected: "50.0"},
		{Name: "two_thirds", Part: 2, Whole: 3, Expected: "66.67"},
		{Name: "all", Part: 4, Whole: 4, Expected: "100.0"},
		{Name: "one_seventh", Part: 1, Whole: 7, Expected: "14.29"},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			pct, ok := cleanup.RunStatistics{PullRequests: tc.Part, Eligible: tc.Whole}.PullRequestRatio()
			assert.True(t, ok)
			assert.Equal(t, tc.Expected, cleanup.FormatPercent(pct))
		})
	}
}
