package testhelpers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"vaultsync.dev/vaultsync/internal/git"
)

// FakeBackend is an in-memory git.Backend for driving the engine through
// paths a real repository cannot easily reach. Set the exported fields to
// script it and read Calls to see what the engine invoked.
type FakeBackend struct {
	mu sync.Mutex

	Repo    bool
	Branch  string
	HeadOID string
	Entries []git.StatusEntry

	Remotes map[string]string
	Config  map[string]string

	RemoteRefExists bool
	Ahead, Behind   int

	PullResult git.PullResult
	PushResult git.PushResult

	VersionErr error
	StatusErr  error
	FetchErr   error
	PullErr    error
	PushErr    error
	CommitErr  error

	// UnmergedOnConflict lists the paths Status reports after a PullConflict
	UnmergedOnConflict []string

	// OnPull runs inside Pull with the context the engine passed
	OnPull func(ctx context.Context)

	Calls map[string]int

	conflicted bool
	commits    int
}

// NewFakeBackend returns a clean repository on main with one commit and an
// origin remote whose branch exists and is level with HEAD.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Repo:            true,
		Branch:          "main",
		HeadOID:         "0000000000000000000000000000000000000001",
		Remotes:         map[string]string{"origin": "git@github.com:owner/vault.git"},
		Config:          map[string]string{"user.name": "Test User", "user.email": "test@example.com"},
		RemoteRefExists: true,
		PullResult:      git.PullDone,
		PushResult:      git.PushDone,
		Calls:           map[string]int{},
	}
}

// CallCount returns how many times method was invoked
func (f *FakeBackend) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// AddChange records an untracked file in the working tree
func (f *FakeBackend) AddChange(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Entries = append(f.Entries, git.StatusEntry{Path: path, Index: '?', Worktree: '?', Untracked: true})
}

// ModifyTracked records an unstaged modification to a tracked file
func (f *FakeBackend) ModifyTracked(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Entries = append(f.Entries, git.StatusEntry{Path: path, Index: git.Unmodified, Worktree: 'M'})
}

func (f *FakeBackend) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[method]++
}

func (f *FakeBackend) Name() string { return "fake" }

func (f *FakeBackend) Version(context.Context) (string, error) {
	f.record("Version")
	if f.VersionErr != nil {
		return "", f.VersionErr
	}
	return "git version 2.45.0", nil
}

func (f *FakeBackend) IsRepo(context.Context, string) (bool, error) {
	f.record("IsRepo")
	return f.Repo, nil
}

func (f *FakeBackend) Init(_ context.Context, _, defaultBranch string) error {
	f.record("Init")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Repo = true
	f.Branch = defaultBranch
	f.HeadOID = ""
	return nil
}

func (f *FakeBackend) Status(context.Context, string) (*git.RawStatus, error) {
	f.record("Status")
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	status := &git.RawStatus{
		Branch:  f.Branch,
		HeadOID: f.HeadOID,
		Ahead:   f.Ahead,
		Behind:  f.Behind,
		Entries: append([]git.StatusEntry(nil), f.Entries...),
	}
	if f.RemoteRefExists {
		status.Upstream = "origin/" + f.Branch
	}
	if f.conflicted {
		for _, p := range f.UnmergedOnConflict {
			status.Entries = append(status.Entries, git.StatusEntry{Path: p, Index: 'U', Worktree: 'U', Unmerged: true})
		}
	}
	return status, nil
}

func (f *FakeBackend) GitDir(_ context.Context, path string) (string, error) {
	f.record("GitDir")
	return filepath.Join(path, ".git"), nil
}

func (f *FakeBackend) StageAll(context.Context, string) error {
	f.record("StageAll")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.Entries {
		switch {
		case e.Untracked:
			f.Entries[i] = git.StatusEntry{Path: e.Path, Index: 'A', Worktree: git.Unmodified}
		case e.Worktree != git.Unmodified:
			f.Entries[i].Index = e.Worktree
			f.Entries[i].Worktree = git.Unmodified
		}
	}
	return nil
}

func (f *FakeBackend) Commit(context.Context, string, string) (string, error) {
	f.record("Commit")
	if f.CommitErr != nil {
		return "", f.CommitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	f.HeadOID = fmt.Sprintf("%040x", f.commits+1)
	f.Entries = nil
	f.Ahead++
	return f.HeadOID, nil
}

func (f *FakeBackend) Fetch(context.Context, string, string) error {
	f.record("Fetch")
	return f.FetchErr
}

func (f *FakeBackend) Pull(ctx context.Context, _, _, _ string, _ bool) (git.PullResult, error) {
	f.record("Pull")
	if f.OnPull != nil {
		f.OnPull(ctx)
	}
	if f.PullErr != nil {
		return git.PullConflict, f.PullErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PullResult == git.PullConflict {
		f.conflicted = true
		return git.PullConflict, nil
	}
	f.Behind = 0
	return f.PullResult, nil
}

func (f *FakeBackend) AbortRebase(context.Context, string) error {
	f.record("AbortRebase")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicted = false
	return nil
}

func (f *FakeBackend) Push(context.Context, string, string, string, bool) (git.PushResult, error) {
	f.record("Push")
	if f.PushErr != nil {
		return git.PushDone, f.PushErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ahead = 0
	f.RemoteRefExists = true
	return f.PushResult, nil
}

func (f *FakeBackend) GetRemote(_ context.Context, _, name string) (string, bool, error) {
	f.record("GetRemote")
	f.mu.Lock()
	defer f.mu.Unlock()
	url, ok := f.Remotes[name]
	return url, ok, nil
}

func (f *FakeBackend) SetRemote(_ context.Context, _, name, url string) error {
	f.record("SetRemote")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Remotes == nil {
		f.Remotes = map[string]string{}
	}
	f.Remotes[name] = url
	return nil
}

func (f *FakeBackend) ListRemotes(context.Context, string) ([]git.Remote, error) {
	f.record("ListRemotes")
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.Remotes))
	for name := range f.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	remotes := make([]git.Remote, 0, len(names))
	for _, name := range names {
		remotes = append(remotes, git.Remote{Name: name, URL: f.Remotes[name]})
	}
	return remotes, nil
}

func (f *FakeBackend) GetConfig(_ context.Context, _, key string) (string, bool, error) {
	f.record("GetConfig")
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.Config[key]
	return value, ok, nil
}

func (f *FakeBackend) SetConfig(_ context.Context, _, key, value string) error {
	f.record("SetConfig")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Config == nil {
		f.Config = map[string]string{}
	}
	f.Config[key] = value
	return nil
}

func (f *FakeBackend) RefExists(context.Context, string, string) (bool, error) {
	f.record("RefExists")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RemoteRefExists, nil
}

func (f *FakeBackend) AheadBehind(context.Context, string, string, string) (int, int, error) {
	f.record("AheadBehind")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Ahead, f.Behind, nil
}

var _ git.Backend = (*FakeBackend)(nil)
