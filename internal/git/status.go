package git

import (
	"fmt"
	"strconv"
	"strings"
)

// Unmodified is the status code for a side of an entry with no change
const Unmodified = '.'

// StatusEntry is one changed path reported by the backend.
// Index and Worktree use porcelain v2 XY codes ('.' for unmodified).
type StatusEntry struct {
	Path      string
	OrigPath  string
	Index     byte
	Worktree  byte
	Unmerged  bool
	Untracked bool
}

// IsStaged reports whether the entry has changes recorded in the index
func (e StatusEntry) IsStaged() bool {
	return !e.Untracked && !e.Unmerged && e.Index != Unmodified
}

// IsModified reports whether a tracked file differs from the index
func (e StatusEntry) IsModified() bool {
	return !e.Untracked && !e.Unmerged && e.Worktree != Unmodified
}

// RawStatus is the backend view of the working tree and branch state
type RawStatus struct {
	// Branch is empty when HEAD is detached
	Branch string
	// HeadOID is empty when the branch has no commits yet
	HeadOID  string
	Upstream string
	Ahead    int
	Behind   int
	Entries  []StatusEntry
}

// Detached reports whether HEAD points at a commit instead of a branch
func (s *RawStatus) Detached() bool {
	return s.Branch == ""
}

// Unborn reports whether the current branch has no commits yet
func (s *RawStatus) Unborn() bool {
	return s.HeadOID == ""
}

// UnmergedPaths returns the paths left with conflicts
func (s *RawStatus) UnmergedPaths() []string {
	var paths []string
	for _, e := range s.Entries {
		if e.Unmerged {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// HasTrackedChanges reports whether any tracked path is staged, modified or unmerged
func (s *RawStatus) HasTrackedChanges() bool {
	for _, e := range s.Entries {
		if !e.Untracked {
			return true
		}
	}
	return false
}

// HasStaged reports whether anything is recorded in the index for the next commit
func (s *RawStatus) HasStaged() bool {
	for _, e := range s.Entries {
		if e.IsStaged() {
			return true
		}
	}
	return false
}

// ParsePorcelainV2 parses the output of `git status --porcelain=v2 --branch -z`.
func ParsePorcelainV2(out string) (*RawStatus, error) {
	status := &RawStatus{}
	tokens := strings.Split(out, "\x00")

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if token == "" {
			continue
		}

		switch token[0] {
		case '#':
			if err := parseBranchHeader(status, token); err != nil {
				return nil, err
			}
		case '1':
			fields := strings.SplitN(token, " ", 9)
			if len(fields) != 9 || len(fields[1]) != 2 {
				return nil, fmt.Errorf("malformed status entry %q", token)
			}
			status.Entries = append(status.Entries, StatusEntry{
				Path:     fields[8],
				Index:    fields[1][0],
				Worktree: fields[1][1],
			})
		case '2':
			fields := strings.SplitN(token, " ", 10)
			if len(fields) != 10 || len(fields[1]) != 2 {
				return nil, fmt.Errorf("malformed rename entry %q", token)
			}
			entry := StatusEntry{
				Path:     fields[9],
				Index:    fields[1][0],
				Worktree: fields[1][1],
			}
			// With -z the original path follows as its own token
			if i+1 < len(tokens) {
				i++
				entry.OrigPath = tokens[i]
			}
			status.Entries = append(status.Entries, entry)
		case 'u':
			fields := strings.SplitN(token, " ", 11)
			if len(fields) != 11 || len(fields[1]) != 2 {
				return nil, fmt.Errorf("malformed unmerged entry %q", token)
			}
			status.Entries = append(status.Entries, StatusEntry{
				Path:     fields[10],
				Index:    fields[1][0],
				Worktree: fields[1][1],
				Unmerged: true,
			})
		case '?':
			status.Entries = append(status.Entries, StatusEntry{
				Path:      strings.TrimPrefix(token, "? "),
				Index:     '?',
				Worktree:  '?',
				Untracked: true,
			})
		case '!':
			// ignored files are not part of the sync state
		default:
			return nil, fmt.Errorf("unknown status entry %q", token)
		}
	}

	return status, nil
}

func parseBranchHeader(status *RawStatus, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil
	}

	switch fields[1] {
	case "branch.oid":
		if fields[2] != "(initial)" {
			status.HeadOID = fields[2]
		}
	case "branch.head":
		if fields[2] != "(detached)" {
			status.Branch = fields[2]
		}
	case "branch.upstream":
		status.Upstream = fields[2]
	case "branch.ab":
		if len(fields) < 4 {
			return fmt.Errorf("malformed branch.ab header %q", line)
		}
		ahead, err := strconv.Atoi(strings.TrimPrefix(fields[2], "+"))
		if err != nil {
			return fmt.Errorf("malformed ahead count %q: %w", fields[2], err)
		}
		behind, err := strconv.Atoi(strings.TrimPrefix(fields[3], "-"))
		if err != nil {
			return fmt.Errorf("malformed behind count %q: %w", fields[3], err)
		}
		status.Ahead, status.Behind = ahead, behind
	}
	return nil
}
