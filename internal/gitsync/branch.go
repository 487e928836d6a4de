package gitsync

import (
	"context"
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const branchErrorTemplateConstant = "%w: %s"

// CreateBranch resolves baseBranchName to its current tip and creates
// newBranchName pointing at it. The working tree is not switched.
func (engine *Engine) CreateBranch(newBranchName string, baseBranchName string) (*plumbing.Reference, error) {
	baseReference, baseError := engine.repository.Reference(plumbing.NewBranchReferenceName(baseBranchName), true)
	if baseError != nil {
		return nil, fmt.Errorf(branchErrorTemplateConstant, ErrBranchNotFound, baseBranchName)
	}

	newReference := plumbing.NewHashReference(plumbing.NewBranchReferenceName(newBranchName), baseReference.Hash())
	if storeError := engine.repository.Storer.SetReference(newReference); storeError != nil {
		return nil, storeError
	}

	return newReference, nil
}

// CheckoutLocal switches the working tree to an existing local branch.
func (engine *Engine) CheckoutLocal(branchName string) error {
	branchReferenceName := plumbing.NewBranchReferenceName(branchName)
	if _, referenceError := engine.repository.Reference(branchReferenceName, true); referenceError != nil {
		return fmt.Errorf(branchErrorTemplateConstant, ErrBranchNotFound, branchName)
	}

	workTree, workTreeError := engine.repository.Worktree()
	if workTreeError != nil {
		return workTreeError
	}

	return workTree.Checkout(&git.CheckoutOptions{Branch: branchReferenceName})
}

// CheckoutRemote fetches the named branch from the remote, creates a local
// branch at the fetched tip when one does not exist yet, and switches to it.
// A branch the remote does not advertise even after the fetch yields
// ErrNoSuchRemoteBranch.
func (engine *Engine) CheckoutRemote(executionContext context.Context, branchName string, remoteName string) error {
	if fetchError := engine.Fetch(executionContext, branchName, remoteName); fetchError != nil {
		// A refspec that matched nothing means the branch does not exist on
		// the remote; that is the caller-facing condition, not a transport one.
		if errors.Is(fetchError, git.NoMatchingRefSpecError{}) {
			return fmt.Errorf(branchErrorTemplateConstant, ErrNoSuchRemoteBranch, branchName)
		}
		return fetchError
	}

	remoteReference, remoteError := engine.repository.Reference(plumbing.NewRemoteReferenceName(remoteName, branchName), true)
	if remoteError != nil {
		return fmt.Errorf(branchErrorTemplateConstant, ErrNoSuchRemoteBranch, branchName)
	}

	localReferenceName := plumbing.NewBranchReferenceName(branchName)
	if _, localError := engine.repository.Reference(localReferenceName, true); localError != nil {
		localReference := plumbing.NewHashReference(localReferenceName, remoteReference.Hash())
		if storeError := engine.repository.Storer.SetReference(localReference); storeError != nil {
			return storeError
		}
	}

	workTree, workTreeError := engine.repository.Worktree()
	if workTreeError != nil {
		return workTreeError
	}

	return workTree.Checkout(&git.CheckoutOptions{Branch: localReferenceName})
}
