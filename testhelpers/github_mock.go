package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	// Repositories maps "owner/repo" to the repository returned by GET /repos/{owner}/{repo}
	Repositories map[string]*github.Repository
	// StatusOverrides maps "owner/repo" to an HTTP status returned instead of the repository
	StatusOverrides map[string]int
	// Requests counts requests per path
	Requests map[string]int
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Repositories:    make(map[string]*github.Repository),
		StatusOverrides: make(map[string]int),
		Requests:        make(map[string]int),
	}
}

// NewMockGitHubServer creates an httptest server that mocks the GitHub
// repository endpoint. Unknown repositories return 404.
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		config.Requests[r.URL.Path]++
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/repos/"), "/")
		if status, ok := config.StatusOverrides[key]; ok {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": http.StatusText(status)})
			return
		}

		repo, ok := config.Repositories[key]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(repo)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// NewMockGitHubClient returns a go-github client pointed at server
func NewMockGitHubClient(t *testing.T, server *httptest.Server) *github.Client {
	t.Helper()
	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("Failed to parse mock server URL: %v", err)
	}
	client.BaseURL = baseURL
	return client
}
