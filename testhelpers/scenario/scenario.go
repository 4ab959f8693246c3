// Package scenario provides a high-level test scenario that combines a Scene,
// an Engine, and a runtime Context to provide a terse API for action tests.
package scenario

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/internal/config"
	"vaultsync.dev/vaultsync/internal/engine"
	"vaultsync.dev/vaultsync/internal/git"
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/tui"
	"vaultsync.dev/vaultsync/testhelpers"
)

// Scenario represents a vault under test: a real repository, an Engine on
// the git CLI backend, and a runtime Context whose output is captured.
// Scenarios never touch process-wide state, so they are safe in parallel tests.
type Scenario struct {
	T       *testing.T
	Scene   *testhelpers.Scene
	Dir     string
	Repo    *testhelpers.GitRepo
	Engine  *engine.Engine
	Context *runtime.Context
	Out     *bytes.Buffer
	ErrOut  *bytes.Buffer
}

// NewScenario creates a Scenario backed by a Scene built with setup.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()
	scene := testhelpers.NewScene(t, setup)
	return newScenario(t, scene)
}

// NewVaultScenario creates a Scenario for a directory that is not yet a
// repository.
func NewVaultScenario(t *testing.T) *Scenario {
	t.Helper()
	dir := testhelpers.NewVaultDir(t)
	return newScenario(t, &testhelpers.Scene{Dir: dir, Repo: &testhelpers.GitRepo{Dir: dir}})
}

func newScenario(t *testing.T, scene *testhelpers.Scene) *Scenario {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{Out: out, ErrOut: errOut})
	require.NoError(t, err)

	cfg := config.Default()
	backend := git.NewCLIBackend(git.NewCommandRunner("", testhelpers.GitEnv...))
	eng := engine.New(backend, runtime.EngineOptions(cfg, tui.NewSplogObserver(splog)))

	return &Scenario{
		T:       t,
		Scene:   scene,
		Dir:     scene.Dir,
		Repo:    scene.Repo,
		Engine:  eng,
		Context: runtime.NewContext(context.Background(), eng, splog, cfg, scene.Dir),
		Out:     out,
		ErrOut:  errOut,
	}
}

// WithNote writes a note without staging it.
func (s *Scenario) WithNote(name, content string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Repo.WriteFile(name, content))
	return s
}

// WithCommittedNote writes a note and commits it with raw git.
func (s *Scenario) WithCommittedNote(name, content, message string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Repo.CommitFile(name, content, message))
	return s
}

// WithRemote registers url as the remote "origin" with raw git.
func (s *Scenario) WithRemote(url string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Repo.RunGitCommand("remote", "add", "origin", url))
	return s
}

// RunGit runs a git command in the scenario's repository.
func (s *Scenario) RunGit(args ...string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Repo.RunGitCommand(args...))
	return s
}

// Run invokes an action against the scenario's context and requires success.
func (s *Scenario) Run(action func(ctx *runtime.Context) error) *Scenario {
	s.T.Helper()
	require.NoError(s.T, action(s.Context), "stdout:\n%s\nstderr:\n%s", s.Out.String(), s.ErrOut.String())
	return s
}

// RunExpectError invokes an action and returns its error, which must not be nil.
func (s *Scenario) RunExpectError(action func(ctx *runtime.Context) error) error {
	s.T.Helper()
	err := action(s.Context)
	require.Error(s.T, err)
	return err
}

// ResetOutput discards captured output.
func (s *Scenario) ResetOutput() *Scenario {
	s.Out.Reset()
	s.ErrOut.Reset()
	return s
}

// OutputContains asserts that stdout contains substr.
func (s *Scenario) OutputContains(substr string) *Scenario {
	s.T.Helper()
	require.Contains(s.T, s.Out.String(), substr)
	return s
}

// ErrorOutputContains asserts that stderr contains substr.
func (s *Scenario) ErrorOutputContains(substr string) *Scenario {
	s.T.Helper()
	require.Contains(s.T, s.ErrOut.String(), substr)
	return s
}

// ExpectNote asserts that the vault holds name with exactly content.
func (s *Scenario) ExpectNote(name, content string) *Scenario {
	s.T.Helper()
	testhelpers.ExpectNote(s.T, s.Repo, name, content)
	return s
}

// ExpectFile asserts that a file exists in the vault.
func (s *Scenario) ExpectFile(name string) *Scenario {
	s.T.Helper()
	require.FileExists(s.T, filepath.Join(s.Dir, name))
	return s
}

// ExpectNoFile asserts that a file does not exist in the vault.
func (s *Scenario) ExpectNoFile(name string) *Scenario {
	s.T.Helper()
	_, err := os.Stat(filepath.Join(s.Dir, name))
	require.True(s.T, os.IsNotExist(err), "%s should not exist", name)
	return s
}

// ExpectHeadMessage asserts the subject of the latest commit.
func (s *Scenario) ExpectHeadMessage(expected string) *Scenario {
	s.T.Helper()
	testhelpers.ExpectCommits(s.T, s.Repo, "HEAD", []string{expected})
	return s
}

// ExpectClean asserts there is nothing left to commit.
func (s *Scenario) ExpectClean() *Scenario {
	s.T.Helper()
	testhelpers.ExpectClean(s.T, s.Repo)
	return s
}
