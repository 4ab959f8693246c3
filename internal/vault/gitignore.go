package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GitignoreFile is the ignore file name at the vault root
const GitignoreFile = ".gitignore"

// DefaultGitignore excludes per-device workspace state, plugin build
// output, caches and OS clutter from the vault repository.
const DefaultGitignore = `# Obsidian Git Ignore

# Workspace settings (contains personal preferences)
.obsidian/workspace.json
.obsidian/workspace-mobile.json
.obsidian/workspaces.json

# Plugins (can be large, reinstall via community)
.obsidian/plugins/*/main.js
.obsidian/plugins/*.js
.obsidian/plugins/*.json

# Cache files
.obsidian/cache
.obsidian/graph.json

# Sync settings (if using Obsidian Sync)
.obsidian/sync.json

# OS files
.DS_Store
Thumbs.db
*.swp
*.swo
*~

# Temporary files
*.tmp
*.temp
.tmp/
temp/

# Logs
*.log

# Node modules (if using plugins with npm)
node_modules/

# Build artifacts
dist/
build/

# Backup files
*.bak
*.backup

# Large media files (uncomment if needed)
# *.mp4
# *.mov
# *.avi
# *.mp3
# *.wav

# Vault-specific exclusions
# Add your own patterns below
`

// GitignoreResult describes what WriteGitignore did
type GitignoreResult struct {
	Path     string
	Created  bool
	Patterns int
	Message  string
}

// RenderGitignore returns the default template followed by extra patterns
func RenderGitignore(extra []string) string {
	var b strings.Builder
	b.WriteString(DefaultGitignore)

	var custom []string
	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			custom = append(custom, p)
		}
	}
	if len(custom) > 0 {
		b.WriteString("\n# Custom patterns\n")
		for _, p := range custom {
			b.WriteString(p)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WriteGitignore writes the vault .gitignore. An existing file is kept
// unless overwrite is set.
func WriteGitignore(vaultPath string, extra []string, overwrite bool) (GitignoreResult, error) {
	path := filepath.Join(vaultPath, GitignoreFile)
	result := GitignoreResult{Path: path}

	if _, err := os.Stat(path); err == nil && !overwrite {
		result.Message = ".gitignore already exists (use --overwrite to replace it)"
		return result, nil
	} else if err != nil && !os.IsNotExist(err) {
		return result, fmt.Errorf("failed to check %s: %w", path, err)
	}

	content := RenderGitignore(extra)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", path, err)
	}

	result.Created = true
	result.Patterns = countPatterns(content)
	result.Message = fmt.Sprintf("Created .gitignore with %d patterns", result.Patterns)
	return result, nil
}

// HasGitignore reports whether the vault has a .gitignore
func HasGitignore(vaultPath string) bool {
	info, err := os.Stat(filepath.Join(vaultPath, GitignoreFile))
	return err == nil && !info.IsDir()
}

func countPatterns(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			n++
		}
	}
	return n
}
