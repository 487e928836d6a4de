package gitsync

import (
	"context"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/gutops/gut/internal/execshell"
)

var listIgnoredFilesArgumentsConstant = []string{"ls-files", "--others", "--ignored", "--exclude-standard"}

// SyncStatus classifies a working tree at a point in time. It is derived
// fresh on every inspection and never cached across operations.
type SyncStatus struct {
	New        []string
	Added      []string
	Modified   []string
	Deleted    []string
	Renamed    []string
	Conflicted []string
	// Unstaged lists paths with worktree-side changes not yet in the index.
	Unstaged []string
	Ahead    int
	Behind   int
}

// IsClean reports a working tree with no changes of any kind, tracked or not.
func (syncStatus SyncStatus) IsClean() bool {
	return len(syncStatus.New) == 0 && !syncStatus.IsDirty()
}

// IsDirty reports tracked changes. Untracked files do not make a tree dirty;
// they merely make it not clean.
func (syncStatus SyncStatus) IsDirty() bool {
	return len(syncStatus.Added) > 0 ||
		len(syncStatus.Modified) > 0 ||
		len(syncStatus.Deleted) > 0 ||
		len(syncStatus.Renamed) > 0 ||
		len(syncStatus.Conflicted) > 0
}

// IsFullyStaged reports a tree whose every change sits in the index: no
// untracked files, no unstaged modifications, no unresolved conflicts.
func (syncStatus SyncStatus) IsFullyStaged() bool {
	return len(syncStatus.New) == 0 && len(syncStatus.Unstaged) == 0 && len(syncStatus.Conflicted) == 0
}

// ShouldPush reports a branch that has diverged ahead of its remote counterpart.
func (syncStatus SyncStatus) ShouldPush() bool {
	return syncStatus.Ahead > 0
}

// Status walks the working tree against the index and HEAD and classifies
// every path. When includeIgnored is set, gitignored files are listed among
// the untracked ones as well.
func (engine *Engine) Status(executionContext context.Context, includeIgnored bool) (SyncStatus, error) {
	workTree, workTreeError := engine.repository.Worktree()
	if workTreeError != nil {
		return SyncStatus{}, workTreeError
	}

	workTreeStatus, statusError := workTree.Status()
	if statusError != nil {
		return SyncStatus{}, statusError
	}

	syncStatus := classifyWorkTreeStatus(workTreeStatus)

	if includeIgnored {
		ignoredPaths, ignoredError := engine.listIgnoredPaths(executionContext)
		if ignoredError != nil {
			return SyncStatus{}, ignoredError
		}
		syncStatus.New = append(syncStatus.New, ignoredPaths...)
		sort.Strings(syncStatus.New)
	}

	aheadCount, behindCount, divergenceError := engine.aheadBehind(DefaultRemoteName)
	if divergenceError != nil {
		return SyncStatus{}, divergenceError
	}
	syncStatus.Ahead = aheadCount
	syncStatus.Behind = behindCount

	return syncStatus, nil
}

func classifyWorkTreeStatus(workTreeStatus git.Status) SyncStatus {
	syncStatus := SyncStatus{}

	for filePath, fileStatus := range workTreeStatus {
		switch {
		case fileStatus.Staging == git.UpdatedButUnmerged || fileStatus.Worktree == git.UpdatedButUnmerged:
			syncStatus.Conflicted = append(syncStatus.Conflicted, filePath)
		case fileStatus.Staging == git.Untracked || fileStatus.Worktree == git.Untracked:
			syncStatus.New = append(syncStatus.New, filePath)
		case fileStatus.Staging == git.Renamed || fileStatus.Worktree == git.Renamed:
			syncStatus.Renamed = append(syncStatus.Renamed, filePath)
		case fileStatus.Staging == git.Added:
			syncStatus.Added = append(syncStatus.Added, filePath)
		case fileStatus.Staging == git.Deleted || fileStatus.Worktree == git.Deleted:
			syncStatus.Deleted = append(syncStatus.Deleted, filePath)
		case fileStatus.Staging == git.Modified || fileStatus.Worktree == git.Modified:
			syncStatus.Modified = append(syncStatus.Modified, filePath)
		}

		if fileStatus.Worktree != git.Unmodified && fileStatus.Worktree != git.Untracked {
			syncStatus.Unstaged = append(syncStatus.Unstaged, filePath)
		}
	}

	sort.Strings(syncStatus.New)
	sort.Strings(syncStatus.Added)
	sort.Strings(syncStatus.Modified)
	sort.Strings(syncStatus.Deleted)
	sort.Strings(syncStatus.Renamed)
	sort.Strings(syncStatus.Conflicted)
	sort.Strings(syncStatus.Unstaged)

	return syncStatus
}

func (engine *Engine) listIgnoredPaths(executionContext context.Context) ([]string, error) {
	executionResult, executionError := engine.shellExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        listIgnoredFilesArgumentsConstant,
		WorkingDirectory: engine.repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}

	var ignoredPaths []string
	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedPath := strings.TrimSpace(outputLine)
		if len(trimmedPath) > 0 {
			ignoredPaths = append(ignoredPaths, trimmedPath)
		}
	}
	return ignoredPaths, nil
}

// aheadBehind counts commits exclusive to the current branch and to its
// remote-tracking counterpart. A branch without a remote counterpart reports
// zero in both directions.
func (engine *Engine) aheadBehind(remoteName string) (int, int, error) {
	headReference, headError := engine.repository.Head()
	if headError != nil || !headReference.Name().IsBranch() {
		return 0, 0, nil
	}

	remoteReferenceName := plumbing.NewRemoteReferenceName(remoteName, headReference.Name().Short())
	remoteReference, remoteError := engine.repository.Reference(remoteReferenceName, true)
	if remoteError != nil {
		return 0, 0, nil
	}

	if headReference.Hash() == remoteReference.Hash() {
		return 0, 0, nil
	}

	localCommit, localCommitError := engine.repository.CommitObject(headReference.Hash())
	if localCommitError != nil {
		return 0, 0, localCommitError
	}

	remoteCommit, remoteCommitError := engine.repository.CommitObject(remoteReference.Hash())
	if remoteCommitError != nil {
		return 0, 0, remoteCommitError
	}

	mergeBases, mergeBaseError := localCommit.MergeBase(remoteCommit)
	if mergeBaseError != nil {
		return 0, 0, mergeBaseError
	}

	stopHashes := make([]plumbing.Hash, 0, len(mergeBases))
	for _, baseCommit := range mergeBases {
		stopHashes = append(stopHashes, baseCommit.Hash)
	}

	aheadCount, aheadError := countExclusiveCommits(localCommit, stopHashes)
	if aheadError != nil {
		return 0, 0, aheadError
	}

	behindCount, behindError := countExclusiveCommits(remoteCommit, stopHashes)
	if behindError != nil {
		return 0, 0, behindError
	}

	return aheadCount, behindCount, nil
}

func countExclusiveCommits(fromCommit *object.Commit, stopHashes []plumbing.Hash) (int, error) {
	for _, stopHash := range stopHashes {
		if fromCommit.Hash == stopHash {
			return 0, nil
		}
	}

	commitCount := 0
	commitIterator := object.NewCommitPreorderIter(fromCommit, nil, stopHashes)
	iterationError := commitIterator.ForEach(func(*object.Commit) error {
		commitCount++
		return nil
	})
	if iterationError != nil {
		return 0, iterationError
	}

	return commitCount, nil
}
