package helpers_test

import (
	"testing"

	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestFullRef(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "full_ref_format",
			Input:    "refs/heads/main",
			Expected: "refs/heads/main",
		},
		{
			Name:     "short_ref_format",
			Input:    "codeowners-1234",
			Expected: "refs/heads/codeowners-1234",
		},
		{
			Name:     "heads_ref_format",
			Input:    "heads/main",
			Expected: "refs/heads/main",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, helpers.FullRef(tc.Input))
		})
	}
}

func TestHeadsRef(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "full_ref_format",
			Input:    "refs/heads/main",
			Expected: "heads/main",
		},
		{
			Name:     "short_ref_format",
			Input:    "main",
			Expected: "heads/main",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, helpers.HeadsRef(tc.Input))
		})
	}
}
