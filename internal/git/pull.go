package git

// PullResult represents the result of a pull operation
type PullResult int

const (
	// PullDone indicates remote commits were integrated
	PullDone PullResult = iota
	// PullUnneeded indicates there was nothing to integrate
	PullUnneeded
	// PullConflict indicates a conflict occurred during pull
	PullConflict
)

func (r PullResult) String() string {
	switch r {
	case PullDone:
		return "done"
	case PullUnneeded:
		return "unneeded"
	case PullConflict:
		return "conflict"
	default:
		return "unknown"
	}
}
