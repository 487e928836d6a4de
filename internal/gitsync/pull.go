package gitsync

import (
	"context"
	"errors"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gutops/gut/internal/execshell"
)

const (
	mergeSubcommandConstant       = "merge"
	rebaseSubcommandConstant      = "rebase"
	stashSubcommandConstant       = "stash"
	stashPushArgumentConstant     = "push"
	stashMessageFlagConstant      = "--message"
	mergeNoEditFlagConstant       = "--no-edit"
	abortFlagConstant             = "--abort"
	stashReferenceNameConstant    = "refs/stash"
	missingStashMessageConstant   = "stash did not record an entry"
	detachedHeadPullErrorConstant = "pull requires a checked-out branch"
)

// PullOptions selects the integration strategy for diverged histories.
type PullOptions struct {
	// UseMerge creates a merge commit instead of rebasing local commits.
	UseMerge bool
	// AbortOnConflict backs out of a conflicting merge or rebase instead of
	// leaving the tree conflicted, reporting MergeOutcomeSkipConflict.
	AbortOnConflict bool
}

// Pull fetches the current branch's remote counterpart and integrates it.
// Fast-forward is always preferred when the local branch is a strict
// ancestor of the fetched tip; this is not configurable. Conflicts are never
// auto-resolved: the tree is left conflicted (or restored, under
// AbortOnConflict) and the outcome reports the fact.
func (engine *Engine) Pull(executionContext context.Context, remoteName string, pullOptions PullOptions) (MergeOutcome, error) {
	headReference, headError := engine.repository.Head()
	if headError != nil {
		return MergeOutcomeNothing, headError
	}
	if !headReference.Name().IsBranch() {
		return MergeOutcomeNothing, errors.New(detachedHeadPullErrorConstant)
	}
	branchName := headReference.Name().Short()

	if fetchError := engine.Fetch(executionContext, branchName, remoteName); fetchError != nil {
		return MergeOutcomeNothing, fetchError
	}

	remoteReference, remoteError := engine.repository.Reference(plumbing.NewRemoteReferenceName(remoteName, branchName), true)
	if remoteError != nil {
		// No remote counterpart after fetch: nothing to integrate.
		return MergeOutcomeNothing, nil
	}

	localHash := headReference.Hash()
	remoteHash := remoteReference.Hash()
	if localHash == remoteHash {
		return MergeOutcomeNothing, nil
	}

	localCommit, localCommitError := engine.repository.CommitObject(localHash)
	if localCommitError != nil {
		return MergeOutcomeNothing, localCommitError
	}
	remoteCommit, remoteCommitError := engine.repository.CommitObject(remoteHash)
	if remoteCommitError != nil {
		return MergeOutcomeNothing, remoteCommitError
	}

	localIsAncestor, ancestorError := localCommit.IsAncestor(remoteCommit)
	if ancestorError != nil {
		return MergeOutcomeNothing, ancestorError
	}
	if localIsAncestor {
		if fastForwardError := engine.fastForward(headReference.Name(), remoteHash); fastForwardError != nil {
			return MergeOutcomeNothing, fastForwardError
		}
		return MergeOutcomeFastForward, nil
	}

	remoteIsAncestor, reverseAncestorError := remoteCommit.IsAncestor(localCommit)
	if reverseAncestorError != nil {
		return MergeOutcomeNothing, reverseAncestorError
	}
	if remoteIsAncestor {
		// Local branch is strictly ahead; there is nothing to pull.
		return MergeOutcomeNothing, nil
	}

	if pullOptions.UseMerge {
		return engine.mergeRemoteTip(executionContext, remoteHash, pullOptions.AbortOnConflict)
	}
	return engine.rebaseOntoRemoteTip(executionContext, remoteHash, pullOptions.AbortOnConflict)
}

// Stash saves the dirty working tree under the given message and returns the
// recorded stash commit. The stash is left unapplied; restoring it is the
// caller's explicit action.
func (engine *Engine) Stash(executionContext context.Context, message string) (plumbing.Hash, error) {
	stashArguments := []string{stashSubcommandConstant, stashPushArgumentConstant}
	if len(message) > 0 {
		stashArguments = append(stashArguments, stashMessageFlagConstant, message)
	}

	if _, executionError := engine.shellExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        stashArguments,
		WorkingDirectory: engine.repositoryPath,
	}); executionError != nil {
		return plumbing.ZeroHash, executionError
	}

	stashReference, referenceError := engine.repository.Reference(plumbing.ReferenceName(stashReferenceNameConstant), true)
	if referenceError != nil {
		return plumbing.ZeroHash, errors.New(missingStashMessageConstant)
	}

	return stashReference.Hash(), nil
}

// fastForward advances the branch pointer to the fetched tip and aligns the
// working tree with it.
func (engine *Engine) fastForward(branchReferenceName plumbing.ReferenceName, remoteHash plumbing.Hash) error {
	branchReference := plumbing.NewHashReference(branchReferenceName, remoteHash)
	if storeError := engine.repository.Storer.SetReference(branchReference); storeError != nil {
		return storeError
	}

	workTree, workTreeError := engine.repository.Worktree()
	if workTreeError != nil {
		return workTreeError
	}

	return workTree.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: remoteHash})
}

func (engine *Engine) mergeRemoteTip(executionContext context.Context, remoteHash plumbing.Hash, abortOnConflict bool) (MergeOutcome, error) {
	mergeArguments := []string{mergeSubcommandConstant, mergeNoEditFlagConstant, remoteHash.String()}
	_, executionError := engine.shellExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        mergeArguments,
		WorkingDirectory: engine.repositoryPath,
	})
	if executionError == nil {
		return MergeOutcomeNormal, nil
	}

	return engine.resolveConflictOutcome(executionContext, executionError, mergeSubcommandConstant, abortOnConflict)
}

func (engine *Engine) rebaseOntoRemoteTip(executionContext context.Context, remoteHash plumbing.Hash, abortOnConflict bool) (MergeOutcome, error) {
	rebaseArguments := []string{rebaseSubcommandConstant, remoteHash.String()}
	_, executionError := engine.shellExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        rebaseArguments,
		WorkingDirectory: engine.repositoryPath,
	})
	if executionError == nil {
		return MergeOutcomeNormal, nil
	}

	return engine.resolveConflictOutcome(executionContext, executionError, rebaseSubcommandConstant, abortOnConflict)
}

// resolveConflictOutcome distinguishes an integration halted by file-level
// conflicts from a genuine failure. Conflicts are a first-class outcome, not
// an error.
func (engine *Engine) resolveConflictOutcome(executionContext context.Context, executionError error, subcommandName string, abortOnConflict bool) (MergeOutcome, error) {
	var commandFailure *execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return MergeOutcomeNothing, executionError
	}

	syncStatus, statusError := engine.Status(executionContext, false)
	if statusError != nil {
		return MergeOutcomeNothing, statusError
	}
	if len(syncStatus.Conflicted) == 0 {
		return MergeOutcomeNothing, executionError
	}

	if abortOnConflict {
		abortArguments := []string{subcommandName, abortFlagConstant}
		if _, abortError := engine.shellExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        abortArguments,
			WorkingDirectory: engine.repositoryPath,
		}); abortError != nil {
			return MergeOutcomeNothing, abortError
		}
		return MergeOutcomeSkipConflict, nil
	}

	return MergeOutcomeWithConflict, nil
}
