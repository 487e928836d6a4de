package gitsync

import (
	"context"
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	fetchOperationNameConstant   = "fetch"
	pushOperationNameConstant    = "push"
	fetchRefSpecTemplateConstant = "+refs/heads/%s:refs/remotes/%s/%s"
	pushRefSpecTemplateConstant  = "refs/heads/%s:refs/heads/%s"
)

// Fetch updates the remote-tracking reference for one branch. Transport
// failures surface as TransportError and are never retried here.
func (engine *Engine) Fetch(executionContext context.Context, branchName string, remoteName string) error {
	authMethod, authError := engine.authMethodForRemote(remoteName)
	if authError != nil {
		return authError
	}

	fetchRefSpec := config.RefSpec(fmt.Sprintf(fetchRefSpecTemplateConstant, branchName, remoteName, branchName))
	fetchError := engine.repository.FetchContext(executionContext, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{fetchRefSpec},
		Auth:       authMethod,
	})
	if errors.Is(fetchError, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if fetchError != nil {
		return &TransportError{Operation: fetchOperationNameConstant, RemoteName: remoteName, Cause: fetchError}
	}

	return nil
}

// Push publishes one branch. A branch that has not diverged ahead of its
// remote counterpart is a no-op, not an error.
func (engine *Engine) Push(executionContext context.Context, branchName string, remoteName string) error {
	currentBranch, branchError := engine.CurrentBranch()
	if branchError == nil && currentBranch == branchName && engine.remoteTrackingExists(branchName, remoteName) {
		aheadCount, _, divergenceError := engine.aheadBehind(remoteName)
		if divergenceError != nil {
			return divergenceError
		}
		if aheadCount == 0 {
			return nil
		}
	}

	authMethod, authError := engine.authMethodForRemote(remoteName)
	if authError != nil {
		return authError
	}

	pushRefSpec := config.RefSpec(fmt.Sprintf(pushRefSpecTemplateConstant, branchName, branchName))
	pushError := engine.repository.PushContext(executionContext, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{pushRefSpec},
		Auth:       authMethod,
	})
	if errors.Is(pushError, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if pushError != nil {
		return &TransportError{Operation: pushOperationNameConstant, RemoteName: remoteName, Cause: pushError}
	}

	return nil
}

func (engine *Engine) remoteTrackingExists(branchName string, remoteName string) bool {
	remoteReferenceName := plumbing.NewRemoteReferenceName(remoteName, branchName)
	_, referenceError := engine.repository.Reference(remoteReferenceName, true)
	return referenceError == nil
}
