// Package github checks the GitHub repository behind a vault remote.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// ErrRepositoryNotFound indicates the repository does not exist or the token cannot see it
var ErrRepositoryNotFound = errors.New("repository not found")

// RepositoryInfo contains the repository fields vaultsync cares about.
// This is a simplified struct to avoid coupling to go-github library
type RepositoryInfo struct {
	FullName      string
	HTMLURL       string
	DefaultBranch string
	Private       bool
	Archived      bool
	CanPush       bool
}

// Client is an interface for GitHub API interactions
type Client interface {
	// GetRepository fetches a repository, returning ErrRepositoryNotFound on 404
	GetRepository(ctx context.Context, owner, repo string) (*RepositoryInfo, error)
}

// RealClient implements Client using the GitHub REST API
type RealClient struct {
	client *github.Client
}

// NewClient creates a client for hostname authenticated with token.
// Supports both github.com and GitHub Enterprise instances
func NewClient(ctx context.Context, hostname, token string) (*RealClient, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	if hostname != "" && hostname != "github.com" {
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", hostname, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}
	return &RealClient{client: client}, nil
}

// NewClientWithGitHub wraps an existing go-github client, for tests and
// callers that manage their own HTTP transport.
func NewClientWithGitHub(client *github.Client) *RealClient {
	return &RealClient{client: client}
}

// NewClientFromEnvironment resolves a token with GetToken and creates a client
func NewClientFromEnvironment(ctx context.Context, hostname string) (*RealClient, error) {
	token, err := GetToken(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, hostname, token)
}

// GetRepository fetches a repository
func (c *RealClient) GetRepository(ctx context.Context, owner, repo string) (*RepositoryInfo, error) {
	r, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s: %w", owner, repo, ErrRepositoryNotFound)
		}
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return toRepositoryInfo(r), nil
}

func toRepositoryInfo(r *github.Repository) *RepositoryInfo {
	if r == nil {
		return nil
	}
	info := &RepositoryInfo{
		FullName:      r.GetFullName(),
		HTMLURL:       r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
		Archived:      r.GetArchived(),
	}
	if perms := r.GetPermissions(); perms != nil {
		info.CanPush = perms["push"]
	}
	return info
}
