// Package models provides the data structures shared between the cleanup pipeline and its collaborators.
package models

import "fmt"

// Repository is a repository as seen by a single run. It is not modified once fetched.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
	Archived      bool
	HTMLURL       string
}

// FullName returns the owner/name form of the repository identifier.
func (r *Repository) FullName() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// Organization is a resolved organization.
type Organization struct {
	Login string
}

// PullRequest is a created pull request.
type PullRequest struct {
	Number  int
	HTMLURL string
	Head    string
	Base    string
}

// Issue is a created issue.
type Issue struct {
	Number  int
	HTMLURL string
}

// NewPull describes a pull request to open.
type NewPull struct {
	Title, Body, Head, Base string
}

// FileUpdate describes a single-file commit on a branch.
type FileUpdate struct {
	Path    string
	Branch  string
	Message string
	Content []byte
	// SHA is the blob SHA of the file being replaced.
	SHA string
}
