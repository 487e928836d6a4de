package fleet

import (
	"context"
	"fmt"

	"github.com/gutops/gut/internal/gitsync"
)

const (
	autoStashMessageConstant      = "gut: stashed before pull"
	skippedDirtyStatusConstant    = "skipped (dirty)"
	skippedConflictStatusConstant = "skipped (conflicted)"
	pushedStatusLabelConstant     = "pushed"
	upToDateStatusLabelConstant   = "up-to-date"
	cleanStatusLabelConstant      = "clean"
	dirtyStatusLabelConstant      = "dirty"
	conflictedStatusLabelConstant = "conflicted"
	branchCreatedTemplateConstant = "created %s from %s"
	aheadBehindTemplateConstant   = "ahead %d, behind %d"
	changeCountsTemplateConstant  = "new %d, modified %d, deleted %d"
)

// EngineFactory builds a synchronization engine for one repository path.
type EngineFactory func(repositoryPath string) (*gitsync.Engine, error)

// SyncResult is the per-repository outcome of a synchronization operation.
type SyncResult struct {
	Outcome      gitsync.MergeOutcome
	Status       gitsync.SyncStatus
	Stashed      bool
	SkippedDirty bool
}

// PullBehavior tunes the fleet pull operation.
type PullBehavior struct {
	RemoteName  string
	StashDirty  bool
	PullOptions gitsync.PullOptions
}

// NewPullOperation builds the per-repository pull: clean trees pull
// directly; dirty-but-unconflicted trees either stash first (when opted in,
// the stash stays unapplied afterwards) or are skipped; conflicted trees are
// always skipped.
func NewPullOperation(engineFactory EngineFactory, behavior PullBehavior) Operation[SyncResult] {
	remoteName := behavior.RemoteName
	if len(remoteName) == 0 {
		remoteName = gitsync.DefaultRemoteName
	}

	return func(executionContext context.Context, handle RepositoryHandle) (SyncResult, error) {
		syncEngine, engineError := engineFactory(handle.LocalPath)
		if engineError != nil {
			return SyncResult{}, engineError
		}

		syncStatus, statusError := syncEngine.Status(executionContext, false)
		if statusError != nil {
			return SyncResult{}, statusError
		}

		if len(syncStatus.Conflicted) > 0 {
			return SyncResult{Outcome: gitsync.MergeOutcomeNothing, Status: syncStatus, SkippedDirty: true}, nil
		}

		stashed := false
		if syncStatus.IsDirty() {
			if !behavior.StashDirty {
				return SyncResult{Outcome: gitsync.MergeOutcomeNothing, Status: syncStatus, SkippedDirty: true}, nil
			}

			if _, stashError := syncEngine.Stash(executionContext, autoStashMessageConstant); stashError != nil {
				return SyncResult{Status: syncStatus}, stashError
			}
			stashed = true
		}

		pullOutcome, pullError := syncEngine.Pull(executionContext, remoteName, behavior.PullOptions)
		return SyncResult{Outcome: pullOutcome, Status: syncStatus, Stashed: stashed}, pullError
	}
}

// PullRow shapes one pull outcome for the report.
func PullRow(outcome Outcome[SyncResult]) (ReportRow, Summary) {
	summary := Summary{Success: 1}
	if outcome.Result.Stashed {
		summary.Stashed = 1
	}

	statusLabel := outcome.Result.Outcome.String()
	switch {
	case len(outcome.Result.Status.Conflicted) > 0:
		statusLabel = skippedConflictStatusConstant
		summary.Conflicted = 1
	case outcome.Result.SkippedDirty:
		statusLabel = skippedDirtyStatusConstant
		summary.Dirty = 1
	case outcome.Result.Outcome == gitsync.MergeOutcomeWithConflict || outcome.Result.Outcome == gitsync.MergeOutcomeSkipConflict:
		summary.Conflicted = 1
	}

	return ReportRow{Repository: outcome.Handle.Name, Status: statusLabel}, summary
}

// NewPushOperation builds the per-repository push of the current branch.
// A branch that is not ahead is reported as up to date, not pushed again.
func NewPushOperation(engineFactory EngineFactory, remoteName string) Operation[SyncResult] {
	if len(remoteName) == 0 {
		remoteName = gitsync.DefaultRemoteName
	}

	return func(executionContext context.Context, handle RepositoryHandle) (SyncResult, error) {
		syncEngine, engineError := engineFactory(handle.LocalPath)
		if engineError != nil {
			return SyncResult{}, engineError
		}

		currentBranch, branchError := syncEngine.CurrentBranch()
		if branchError != nil {
			return SyncResult{}, branchError
		}

		syncStatus, statusError := syncEngine.Status(executionContext, false)
		if statusError != nil {
			return SyncResult{}, statusError
		}

		if pushError := syncEngine.Push(executionContext, currentBranch, remoteName); pushError != nil {
			return SyncResult{Status: syncStatus}, pushError
		}

		return SyncResult{Status: syncStatus}, nil
	}
}

// PushRow shapes one push outcome for the report.
func PushRow(outcome Outcome[SyncResult]) (ReportRow, Summary) {
	statusLabel := upToDateStatusLabelConstant
	if outcome.Result.Status.ShouldPush() {
		statusLabel = pushedStatusLabelConstant
	}
	return ReportRow{Repository: outcome.Handle.Name, Status: statusLabel}, Summary{Success: 1}
}

// NewStatusOperation builds the per-repository working-tree inspection.
func NewStatusOperation(engineFactory EngineFactory, includeIgnored bool) Operation[gitsync.SyncStatus] {
	return func(executionContext context.Context, handle RepositoryHandle) (gitsync.SyncStatus, error) {
		syncEngine, engineError := engineFactory(handle.LocalPath)
		if engineError != nil {
			return gitsync.SyncStatus{}, engineError
		}
		return syncEngine.Status(executionContext, includeIgnored)
	}
}

// StatusRow shapes one status outcome for the report.
func StatusRow(outcome Outcome[gitsync.SyncStatus]) (ReportRow, Summary) {
	summary := Summary{Success: 1}

	statusLabel := cleanStatusLabelConstant
	switch {
	case len(outcome.Result.Conflicted) > 0:
		statusLabel = conflictedStatusLabelConstant
		summary.Conflicted = 1
	case !outcome.Result.IsClean():
		statusLabel = dirtyStatusLabelConstant
		summary.Dirty = 1
	}

	detailText := fmt.Sprintf(aheadBehindTemplateConstant, outcome.Result.Ahead, outcome.Result.Behind)
	if !outcome.Result.IsClean() {
		detailText += "; " + fmt.Sprintf(changeCountsTemplateConstant, len(outcome.Result.New), len(outcome.Result.Modified), len(outcome.Result.Deleted))
	}

	return ReportRow{Repository: outcome.Handle.Name, Status: statusLabel, Details: detailText}, summary
}

// NewCreateBranchOperation builds the per-repository branch creation. An
// empty base resolves to each repository's current branch.
func NewCreateBranchOperation(engineFactory EngineFactory, newBranchName string, baseBranchName string) Operation[string] {
	return func(executionContext context.Context, handle RepositoryHandle) (string, error) {
		syncEngine, engineError := engineFactory(handle.LocalPath)
		if engineError != nil {
			return "", engineError
		}

		resolvedBase := baseBranchName
		if len(resolvedBase) == 0 {
			currentBranch, branchError := syncEngine.CurrentBranch()
			if branchError != nil {
				return "", branchError
			}
			resolvedBase = currentBranch
		}

		if _, createError := syncEngine.CreateBranch(newBranchName, resolvedBase); createError != nil {
			return "", createError
		}

		return fmt.Sprintf(branchCreatedTemplateConstant, newBranchName, resolvedBase), nil
	}
}

// CreateBranchRow shapes one branch-creation outcome for the report.
func CreateBranchRow(outcome Outcome[string]) (ReportRow, Summary) {
	return ReportRow{Repository: outcome.Handle.Name, Status: outcome.Result}, Summary{Success: 1}
}
