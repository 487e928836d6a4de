package gitsync

import (
	"errors"
	"fmt"
)

const transportErrorTemplateConstant = "%s against remote %s failed: %v"

// Named preconditions surfaced by branch and checkout operations.
var (
	// ErrBranchNotFound reports a base branch name that does not resolve locally.
	ErrBranchNotFound = errors.New("local branch not found")
	// ErrNoSuchRemoteBranch reports a branch missing from the remote even after a fetch.
	ErrNoSuchRemoteBranch = errors.New("remote branch not found after fetch")
	// ErrHeadNotBranch reports a detached HEAD where a current branch is required.
	ErrHeadNotBranch = errors.New("HEAD does not point at a local branch")
)

// TransportError reports a network or authentication failure during fetch or
// push. The engine never retries transport failures; retry policy belongs to
// the caller.
type TransportError struct {
	Operation  string
	RemoteName string
	Cause      error
}

// Error renders the failed operation with its remote and underlying cause.
func (transportFailure *TransportError) Error() string {
	return fmt.Sprintf(transportErrorTemplateConstant, transportFailure.Operation, transportFailure.RemoteName, transportFailure.Cause)
}

// Unwrap exposes the underlying transport cause.
func (transportFailure *TransportError) Unwrap() error {
	return transportFailure.Cause
}
