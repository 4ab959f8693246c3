package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	format "github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGitBackend implements Backend with go-git for local operations.
// go-git has no rebase and does not consult git credential helpers, so
// network and rebase operations are delegated to the CLI backend.
type GoGitBackend struct {
	cli *CLIBackend
}

// NewGoGitBackend creates a go-git backend that falls back to cli for
// network operations
func NewGoGitBackend(cli *CLIBackend) *GoGitBackend {
	if cli == nil {
		cli = NewCLIBackend(nil)
	}
	return &GoGitBackend{cli: cli}
}

// Name returns "go-git"
func (b *GoGitBackend) Name() string {
	return string(BackendGoGit)
}

// Version returns the git executable version used for network operations
func (b *GoGitBackend) Version(ctx context.Context) (string, error) {
	return b.cli.Version(ctx)
}

func open(path string) (*gogit.Repository, error) {
	return gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: false})
}

// IsRepo reports whether path contains a repository
func (b *GoGitBackend) IsRepo(_ context.Context, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := open(path); err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Init creates a repository whose first branch is defaultBranch
func (b *GoGitBackend) Init(_ context.Context, path, defaultBranch string) error {
	opts := &gogit.PlainInitOptions{}
	if defaultBranch != "" {
		opts.InitOptions.DefaultBranch = plumbing.NewBranchReferenceName(defaultBranch)
	}
	_, err := gogit.PlainInitWithOptions(path, opts)
	return err
}

// Status builds a RawStatus from the worktree, the index and the branch config
func (b *GoGitBackend) Status(_ context.Context, path string) (*RawStatus, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}

	status := &RawStatus{}
	if err := fillHead(repo, status); err != nil {
		return nil, err
	}

	unmerged, err := unmergedPaths(repo)
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	fileStatus, err := wt.Status()
	if err != nil {
		return nil, err
	}

	for _, p := range sortedKeys(unmerged) {
		status.Entries = append(status.Entries, StatusEntry{Path: p, Index: 'U', Worktree: 'U', Unmerged: true})
	}
	for _, p := range sortedKeys(fileStatus) {
		if _, conflicted := unmerged[p]; conflicted {
			continue
		}
		fs := fileStatus[p]
		if fs.Staging == gogit.Unmodified && fs.Worktree == gogit.Unmodified {
			continue
		}
		if fs.Staging == gogit.Untracked || fs.Worktree == gogit.Untracked {
			status.Entries = append(status.Entries, StatusEntry{Path: p, Index: '?', Worktree: '?', Untracked: true})
			continue
		}
		status.Entries = append(status.Entries, StatusEntry{
			Path:     p,
			OrigPath: fs.Extra,
			Index:    statusCode(fs.Staging),
			Worktree: statusCode(fs.Worktree),
		})
	}

	if status.Branch != "" && status.HeadOID != "" {
		if err := fillUpstream(repo, status); err != nil {
			return nil, err
		}
	}
	return status, nil
}

func fillHead(repo *gogit.Repository, status *RawStatus) error {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return err
	}
	if head.Type() == plumbing.SymbolicReference {
		status.Branch = head.Target().Short()
	}

	resolved, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return nil
	case err != nil:
		return err
	}
	status.HeadOID = resolved.Hash().String()
	return nil
}

func fillUpstream(repo *gogit.Repository, status *RawStatus) error {
	cfg, err := repo.Config()
	if err != nil {
		return err
	}
	branchCfg, ok := cfg.Branches[status.Branch]
	if !ok || branchCfg.Remote == "" || branchCfg.Merge == "" {
		return nil
	}

	status.Upstream = branchCfg.Remote + "/" + branchCfg.Merge.Short()
	upstreamRef := plumbing.NewRemoteReferenceName(branchCfg.Remote, branchCfg.Merge.Short())
	ref, err := repo.Reference(upstreamRef, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// upstream is gone; report it without counts like git does
		return nil
	}
	if err != nil {
		return err
	}

	ahead, behind, err := aheadBehind(repo, plumbing.NewHash(status.HeadOID), ref.Hash())
	if err != nil {
		return err
	}
	status.Ahead, status.Behind = ahead, behind
	return nil
}

func unmergedPaths(repo *gogit.Repository) (map[string]struct{}, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	paths := make(map[string]struct{})
	// Merged entries decode with stage 0; index.Merged is 1, the same value
	// as index.AncestorMode
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			paths[e.Name] = struct{}{}
		}
	}
	return paths, nil
}

func statusCode(code gogit.StatusCode) byte {
	if code == gogit.Unmodified {
		return Unmodified
	}
	return byte(code)
}

// StageAll stages additions, modifications and deletions
func (b *GoGitBackend) StageAll(_ context.Context, path string) error {
	repo, err := open(path)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	fileStatus, err := wt.Status()
	if err != nil {
		return err
	}

	for _, p := range sortedKeys(fileStatus) {
		fs := fileStatus[p]
		switch {
		case fs.Worktree == gogit.Deleted:
			if _, err := wt.Remove(p); err != nil && !errors.Is(err, index.ErrEntryNotFound) && !os.IsNotExist(err) {
				return fmt.Errorf("failed to stage deletion of %s: %w", p, err)
			}
		case fs.Worktree != gogit.Unmodified:
			if _, err := wt.Add(p); err != nil {
				return fmt.Errorf("failed to stage %s: %w", p, err)
			}
		}
	}
	return nil
}

// Commit records the index with the configured identity
func (b *GoGitBackend) Commit(ctx context.Context, path, message string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}

	name, _, err := b.GetConfig(ctx, path, "user.name")
	if err != nil {
		return "", err
	}
	email, _, err := b.GetConfig(ctx, path, "user.email")
	if err != nil {
		return "", err
	}

	opts := &gogit.CommitOptions{}
	if name != "" || email != "" {
		opts.Author = &object.Signature{Name: name, Email: email, When: time.Now()}
	}
	hash, err := wt.Commit(message, opts)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// Fetch delegates to the CLI backend
func (b *GoGitBackend) Fetch(ctx context.Context, path, remote string) error {
	return b.cli.Fetch(ctx, path, remote)
}

// GitDir delegates to the CLI backend
func (b *GoGitBackend) GitDir(ctx context.Context, path string) (string, error) {
	return b.cli.GitDir(ctx, path)
}

// Pull delegates to the CLI backend
func (b *GoGitBackend) Pull(ctx context.Context, path, remote, branch string, rebase bool) (PullResult, error) {
	return b.cli.Pull(ctx, path, remote, branch, rebase)
}

// AbortRebase delegates to the CLI backend
func (b *GoGitBackend) AbortRebase(ctx context.Context, path string) error {
	return b.cli.AbortRebase(ctx, path)
}

// Push delegates to the CLI backend
func (b *GoGitBackend) Push(ctx context.Context, path, remote, branch string, allBranches bool) (PushResult, error) {
	return b.cli.Push(ctx, path, remote, branch, allBranches)
}

// GetRemote returns the first URL of the named remote
func (b *GoGitBackend) GetRemote(_ context.Context, path, name string) (string, bool, error) {
	repo, err := open(path)
	if err != nil {
		return "", false, err
	}
	remote, err := repo.Remote(name)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", true, nil
	}
	return urls[0], true, nil
}

// SetRemote creates the remote, or rewrites its URL when it already exists
func (b *GoGitBackend) SetRemote(_ context.Context, path, name, url string) error {
	repo, err := open(path)
	if err != nil {
		return err
	}
	cfg, err := repo.Config()
	if err != nil {
		return err
	}

	if existing, ok := cfg.Remotes[name]; ok {
		existing.URLs = []string{url}
		return repo.Storer.SetConfig(cfg)
	}

	_, err = repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	return err
}

// ListRemotes returns every configured remote
func (b *GoGitBackend) ListRemotes(_ context.Context, path string) ([]Remote, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, err
	}

	result := make([]Remote, 0, len(remotes))
	for _, r := range remotes {
		remote := Remote{Name: r.Config().Name}
		if urls := r.Config().URLs; len(urls) > 0 {
			remote.URL = urls[0]
		}
		result = append(result, remote)
	}
	return result, nil
}

// GetConfig reads key from the repository config. Keys not set locally are
// looked up by git itself, so global and system files (and GIT_CONFIG_GLOBAL)
// are honored the same way as the CLI backend.
func (b *GoGitBackend) GetConfig(ctx context.Context, path, key string) (string, bool, error) {
	repo, err := open(path)
	if err != nil {
		return "", false, err
	}
	cfg, err := repo.Config()
	if err != nil {
		return "", false, err
	}

	section, subsection, option, err := splitConfigKey(key)
	if err != nil {
		return "", false, err
	}
	if !cfg.Raw.HasSection(section) {
		return b.cli.GetConfig(ctx, path, key)
	}

	var options format.Options
	sec := cfg.Raw.Section(section)
	if subsection == "" {
		options = sec.Options
	} else if sec.HasSubsection(subsection) {
		options = sec.Subsection(subsection).Options
	}
	// the last occurrence wins, as with git config --get
	for i := len(options) - 1; i >= 0; i-- {
		if strings.EqualFold(options[i].Key, option) {
			return options[i].Value, true, nil
		}
	}
	return b.cli.GetConfig(ctx, path, key)
}

// SetConfig writes key into the repository config
func (b *GoGitBackend) SetConfig(ctx context.Context, path, key, value string) error {
	section, subsection, option, err := splitConfigKey(key)
	if err != nil {
		return err
	}
	// go-git rebuilds these sections from its parsed model when saving,
	// dropping subsections it does not know about
	switch strings.ToLower(section) {
	case "branch", "remote", "submodule":
		return b.cli.SetConfig(ctx, path, key, value)
	}

	repo, err := open(path)
	if err != nil {
		return err
	}
	cfg, err := repo.Config()
	if err != nil {
		return err
	}

	if subsection == "" {
		cfg.Raw.Section(section).SetOption(option, value)
	} else {
		cfg.Raw.Section(section).Subsection(subsection).SetOption(option, value)
	}

	// keep the parsed fields in sync so Marshal does not restore old values
	switch strings.ToLower(key) {
	case "user.name":
		cfg.User.Name = value
	case "user.email":
		cfg.User.Email = value
	}
	return repo.Storer.SetConfig(cfg)
}

// RefExists reports whether ref resolves to a commit
func (b *GoGitBackend) RefExists(_ context.Context, path, ref string) (bool, error) {
	repo, err := open(path)
	if err != nil {
		return false, err
	}
	_, err = repo.ResolveRevision(plumbing.Revision(ref))
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AheadBehind counts commits reachable from only one of local and upstream
func (b *GoGitBackend) AheadBehind(_ context.Context, path, local, upstream string) (int, int, error) {
	repo, err := open(path)
	if err != nil {
		return 0, 0, err
	}
	localHash, err := repo.ResolveRevision(plumbing.Revision(local))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve %s: %w", local, err)
	}
	upstreamHash, err := repo.ResolveRevision(plumbing.Revision(upstream))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve %s: %w", upstream, err)
	}
	return aheadBehind(repo, *localHash, *upstreamHash)
}

func aheadBehind(repo *gogit.Repository, local, upstream plumbing.Hash) (int, int, error) {
	if local == upstream {
		return 0, 0, nil
	}
	localSet, err := ancestors(repo, local)
	if err != nil {
		return 0, 0, err
	}
	upstreamSet, err := ancestors(repo, upstream)
	if err != nil {
		return 0, 0, err
	}

	ahead, behind := 0, 0
	for h := range localSet {
		if _, ok := upstreamSet[h]; !ok {
			ahead++
		}
	}
	for h := range upstreamSet {
		if _, ok := localSet[h]; !ok {
			behind++
		}
	}
	return ahead, behind, nil
}

func ancestors(repo *gogit.Repository, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	set := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = struct{}{}
		return nil
	})
	return set, err
}

// splitConfigKey splits "section.key" or "section.sub.section.key".
func splitConfigKey(key string) (section, subsection, option string, err error) {
	first := strings.Index(key, ".")
	last := strings.LastIndex(key, ".")
	if first <= 0 || last == len(key)-1 {
		return "", "", "", fmt.Errorf("invalid config key %q", key)
	}
	section = key[:first]
	option = key[last+1:]
	if first != last {
		subsection = key[first+1 : last]
	}
	return section, subsection, option, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
