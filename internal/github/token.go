package github

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// tokenEnvVars are checked in order before falling back to the gh CLI
var tokenEnvVars = []string{"GITHUB_TOKEN", "GH_TOKEN"}

// GetToken gets a GitHub token from the environment or the gh CLI
func GetToken(ctx context.Context) (string, error) {
	for _, name := range tokenEnvVars {
		if token := os.Getenv(name); token != "" {
			return token, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "gh", "auth", "token")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to get GitHub token: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	token := strings.TrimSpace(stdout.String())
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}
	return token, nil
}
