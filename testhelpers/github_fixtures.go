package testhelpers

import (
	"github.com/google/go-github/v62/github"
)

// SampleRepoData provides common repository data for testing
type SampleRepoData struct {
	Owner         string
	Name          string
	Private       bool
	Archived      bool
	DefaultBranch string
	CanPush       bool
}

// NewSampleRepository creates a github.Repository from sample data
func NewSampleRepository(data SampleRepoData) *github.Repository {
	fullName := data.Owner + "/" + data.Name
	return &github.Repository{
		Name:          github.String(data.Name),
		FullName:      github.String(fullName),
		HTMLURL:       github.String("https://github.com/" + fullName),
		Private:       github.Bool(data.Private),
		Archived:      github.Bool(data.Archived),
		DefaultBranch: github.String(data.DefaultBranch),
		Permissions:   map[string]bool{"push": data.CanPush, "pull": true},
	}
}

// DefaultRepoData returns a private vault repository the token can push to
func DefaultRepoData() SampleRepoData {
	return SampleRepoData{
		Owner:         "owner",
		Name:          "vault",
		Private:       true,
		DefaultBranch: "main",
		CanPush:       true,
	}
}
