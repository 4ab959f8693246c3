package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene is a temporary vault backed by a real Git repository.
// Nothing changes the process working directory, so scenes can run in parallel.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a temporary directory with an initialized repository and
// runs setup against it. Cleanup is handled by t.TempDir.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "vault")
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("Failed to create vault dir: %v", err)
	}

	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{Dir: dir, Repo: repo}
	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// NewVaultDir creates an empty, uninitialized vault directory.
func NewVaultDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "vault")
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("Failed to create vault dir: %v", err)
	}
	return dir
}

// BasicSceneSetup creates a scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// RemoteSceneSetup creates a scene with one commit pushed to a bare "origin".
func RemoteSceneSetup(scene *Scene) error {
	if err := BasicSceneSetup(scene); err != nil {
		return err
	}
	if _, err := scene.Repo.CreateBareRemote("origin"); err != nil {
		return err
	}
	return scene.Repo.PushBranch("origin", "main")
}

// RemoteDir returns the bare repository created for remote name.
func (s *Scene) RemoteDir(name string) string {
	return s.Dir + "-" + name + ".git"
}

// CloneRemote clones the scene's remote into a second working copy, standing
// in for another device syncing the same vault.
func (s *Scene) CloneRemote(t *testing.T, name string) *GitRepo {
	t.Helper()

	dir := filepath.Join(filepath.Dir(s.Dir), "other-device")
	repo, err := CloneGitRepo(s.RemoteDir(name), dir)
	if err != nil {
		t.Fatalf("Failed to clone remote: %v", err)
	}
	return repo
}
