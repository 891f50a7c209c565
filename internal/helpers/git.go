package helpers

import "strings"

const headsPrefix = "refs/heads/"

// BranchName strips any refs/heads/ or heads/ prefix from ref.
func BranchName(ref string) string {
	return strings.TrimPrefix(strings.TrimPrefix(ref, headsPrefix), "heads/")
}

// FullRef returns the fully qualified refs/heads/ form of a branch.
func FullRef(branch string) string {
	return headsPrefix + BranchName(branch)
}

// HeadsRef returns the heads/<branch> form expected by the git refs API.
func HeadsRef(branch string) string {
	return "heads/" + BranchName(branch)
}
