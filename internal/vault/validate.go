package vault

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
)

// ConfigDir is Obsidian's per-vault settings directory
const ConfigDir = ".obsidian"

// DefaultSearchPaths are the home-relative locations FindVault checks, in order
var DefaultSearchPaths = []string{
	"Obsidian",
	"Documents/Obsidian",
	"obsidian",
	"notes",
	"Notes",
}

// LooksLikeVault reports whether dir has an .obsidian directory or at least
// one markdown file at its top level.
func LooksLikeVault(dir string) bool {
	if info, err := os.Stat(filepath.Join(dir, ConfigDir)); err == nil && info.IsDir() {
		return true
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	return err == nil && len(matches) > 0
}

// Validate checks that path is an existing, writable directory that looks
// like a vault. Failures wrap errors.ErrInvalidVault.
func Validate(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return syncerrors.NewInvalidVaultError(path, "vault path does not exist")
	case err != nil:
		return syncerrors.NewInvalidVaultError(path, "vault path is not readable")
	case !info.IsDir():
		return syncerrors.NewInvalidVaultError(path, "vault path is not a directory")
	}

	if !writable(path) {
		return syncerrors.NewInvalidVaultError(path, "vault directory is not writable")
	}
	if !LooksLikeVault(path) {
		return syncerrors.NewInvalidVaultError(path,
			"directory does not look like an Obsidian vault (no .obsidian directory or .md files)")
	}
	return nil
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".vaultsync-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// FindVault returns the first default search path under home that looks
// like a vault.
func FindVault(home string) (string, bool) {
	for _, rel := range DefaultSearchPaths {
		dir := filepath.Join(home, rel)
		if info, err := os.Stat(dir); err == nil && info.IsDir() && LooksLikeVault(dir) {
			return dir, true
		}
	}
	return "", false
}

// Summary describes a vault on disk
type Summary struct {
	Path            string
	Name            string
	MarkdownFiles   int
	HasGit          bool
	HasPluginConfig bool
	HasGitignore    bool
}

// Describe counts notes and reports which vaultsync artifacts are present.
// The .git and .obsidian directories are not searched for notes.
func Describe(path string) (Summary, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		Path:            abs,
		Name:            filepath.Base(abs),
		HasGitignore:    HasGitignore(abs),
		HasPluginConfig: fileExists(PluginDataPath(abs)),
	}
	if info, err := os.Stat(filepath.Join(abs, ".git")); err == nil && info.IsDir() {
		s.HasGit = true
	}

	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != abs && (d.Name() == ".git" || d.Name() == ConfigDir) {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".md") {
			s.MarkdownFiles++
		}
		return nil
	})
	return s, err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
