package git_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/internal/git"
)

func porcelain(records ...string) string {
	return strings.Join(records, "\x00") + "\x00"
}

func TestParsePorcelainV2(t *testing.T) {
	t.Run("parses branch headers", func(t *testing.T) {
		status, err := git.ParsePorcelainV2(porcelain(
			"# branch.oid 1234567890abcdef1234567890abcdef12345678",
			"# branch.head main",
			"# branch.upstream origin/main",
			"# branch.ab +2 -3",
		))
		require.NoError(t, err)
		require.Equal(t, "main", status.Branch)
		require.Equal(t, "origin/main", status.Upstream)
		require.Equal(t, 2, status.Ahead)
		require.Equal(t, 3, status.Behind)
		require.False(t, status.Unborn())
		require.False(t, status.Detached())
		require.Empty(t, status.Entries)
	})

	t.Run("recognizes unborn and detached heads", func(t *testing.T) {
		unborn, err := git.ParsePorcelainV2(porcelain("# branch.oid (initial)", "# branch.head main"))
		require.NoError(t, err)
		require.True(t, unborn.Unborn())
		require.Equal(t, "main", unborn.Branch)

		detached, err := git.ParsePorcelainV2(porcelain("# branch.oid abc", "# branch.head (detached)"))
		require.NoError(t, err)
		require.True(t, detached.Detached())
	})

	t.Run("classifies entries", func(t *testing.T) {
		status, err := git.ParsePorcelainV2(porcelain(
			"# branch.oid abc",
			"# branch.head main",
			"1 M. N... 100644 100644 100644 aaa bbb staged.md",
			"1 .M N... 100644 100644 100644 aaa aaa modified note.md",
			"2 R. N... 100644 100644 100644 aaa aaa R100 new name.md",
			"old name.md",
			"u UU N... 100644 100644 100644 100644 aaa bbb ccc conflict.md",
			"? untracked.md",
			"! ignored.tmp",
		))
		require.NoError(t, err)
		require.Len(t, status.Entries, 5)

		staged := status.Entries[0]
		require.Equal(t, "staged.md", staged.Path)
		require.True(t, staged.IsStaged())
		require.False(t, staged.IsModified())

		modified := status.Entries[1]
		require.Equal(t, "modified note.md", modified.Path)
		require.False(t, modified.IsStaged())
		require.True(t, modified.IsModified())

		renamed := status.Entries[2]
		require.Equal(t, "new name.md", renamed.Path)
		require.Equal(t, "old name.md", renamed.OrigPath)
		require.True(t, renamed.IsStaged())

		require.True(t, status.Entries[3].Unmerged)
		require.Equal(t, []string{"conflict.md"}, status.UnmergedPaths())

		require.True(t, status.Entries[4].Untracked)
		require.True(t, status.HasTrackedChanges())
		require.True(t, status.HasStaged())
	})

	t.Run("untracked files alone are not tracked changes", func(t *testing.T) {
		status, err := git.ParsePorcelainV2(porcelain("# branch.head main", "? a.md", "? b.md"))
		require.NoError(t, err)
		require.False(t, status.HasTrackedChanges())
		require.False(t, status.HasStaged())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := git.ParsePorcelainV2(porcelain("1 M."))
		require.Error(t, err)

		_, err = git.ParsePorcelainV2(porcelain("# branch.ab +x -1"))
		require.Error(t, err)

		_, err = git.ParsePorcelainV2(porcelain("Z what"))
		require.Error(t, err)
	})
}
