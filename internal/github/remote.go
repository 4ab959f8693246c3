package github

import (
	"fmt"
	"strings"
)

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// IsGitHubHost reports whether hostname is github.com or looks like a
// GitHub Enterprise host.
func IsGitHubHost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "github.com" || strings.HasPrefix(hostname, "github.") || strings.Contains(hostname, ".github.")
}

// ParseRemoteURL parses a git remote URL and extracts hostname, owner, and repo
// Examples:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo.git
func ParseRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(strings.TrimSuffix(remoteURL, "/"), ".git")

	var hostname, path string
	switch {
	case strings.Contains(remoteURL, "://"):
		rest := remoteURL[strings.Index(remoteURL, "://")+3:]
		if at := strings.Index(rest, "@"); at >= 0 && at < strings.Index(rest+"/", "/") {
			rest = rest[at+1:]
		}
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid remote URL: missing path")
		}
		hostname, path = parts[0], parts[1]
		if i := strings.Index(hostname, ":"); i >= 0 {
			hostname = hostname[:i]
		}
	case strings.Contains(remoteURL, "@"):
		hostAndPath := strings.SplitN(remoteURL, "@", 2)[1]
		parts := strings.SplitN(hostAndPath, ":", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid SSH remote URL: missing path")
		}
		hostname, path = parts[0], parts[1]
	default:
		return nil, fmt.Errorf("unsupported remote URL %q", remoteURL)
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 {
		return nil, fmt.Errorf("invalid remote URL: path must be owner/repo")
	}
	info := &RepoInfo{
		Hostname: hostname,
		Owner:    segments[len(segments)-2],
		Repo:     segments[len(segments)-1],
	}
	if info.Hostname == "" || info.Owner == "" || info.Repo == "" {
		return nil, fmt.Errorf("failed to parse hostname, owner, or repo from remote URL")
	}
	return info, nil
}
