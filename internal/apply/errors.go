package apply

import "errors"

// State-machine preconditions. These are caller-facing conditions, not
// internal faults; the fleet layer reports them per repository.
var (
	// ErrDirtyWorkingTree reports a start attempt on a target with any uncommitted change.
	ErrDirtyWorkingTree = errors.New("working tree is not clean")
	// ErrApplyAlreadyInProgress reports a start attempt while a staged apply exists.
	ErrApplyAlreadyInProgress = errors.New("an apply is already in progress")
	// ErrNoApplyInProgress reports a continue attempt without a staged apply.
	ErrNoApplyInProgress = errors.New("no apply is in progress")
	// ErrNotClean reports a continue attempt with untracked or unstaged remainder.
	ErrNotClean = errors.New("working tree is not fully staged")
	// ErrRevisionNotAdvanced reports a template whose manifest revision has not
	// moved past the target's recorded one.
	ErrRevisionNotAdvanced = errors.New("template revision has not advanced past the target's")
)
