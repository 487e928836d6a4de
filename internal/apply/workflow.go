package apply

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gutops/gut/internal/execshell"
	"github.com/gutops/gut/internal/gitsync"
	"github.com/gutops/gut/internal/patch"
	"github.com/gutops/gut/internal/template"
)

const (
	loggerRequiredMessageConstant       = "apply workflow requires a logger"
	executorRequiredMessageConstant     = "apply workflow requires a shell executor"
	templateRequiredMessageConstant     = "apply workflow requires a template engine"
	patchStripLevelArgumentConstant     = "-p1"
	patchFailureTemplateConstant        = "external patch step failed: %w"
	commitMessageTemplateConstant       = "Apply template revision %d"
	skipCIMessageSuffixConstant         = " [skip ci]"
	revisionGuardTemplateConstant       = "%w: manifest %d, target %d"
	applyStagedMessageConstant          = "apply staged"
	applyCommittedMessageConstant       = "apply committed"
	applyAbortedMessageConstant         = "apply aborted"
	logFieldRepositoryConstant          = "repository"
	logFieldRevisionConstant            = "rev_id"
	logFieldPatchedFileCountConstant    = "patched_files"
	logFieldTemplateCommitShaConstant   = "template_sha"
	logFieldCommittedCommitShaConstant  = "commit"
	emptyPatchNothingStagedLogConstant  = "patch is empty, nothing to rewrite in target"
	abortWithoutMarkerDebugLogConstant  = "abort without staged apply is a no-op"
	deltaRestoreFailedLogConstant       = "failed to restore committed delta after commit failure"
	patchConflictArtifactsLogConstant   = "patch step reported rejects, resolve and continue"
	logFieldPatchStandardOutputConstant = "patch_stdout"
)

// Workflow orchestrates start, continue, and abort for target repositories
// against one template repository.
type Workflow struct {
	logger          *zap.Logger
	shellExecutor   *execshell.ShellExecutor
	templateEngine  *gitsync.Engine
	includeOptional bool
	skipCI          bool
}

// WorkflowOptions tunes which files propagate and how the continue commit is worded.
type WorkflowOptions struct {
	// IncludeOptional propagates the manifest's optional files as well.
	IncludeOptional bool
	// SkipCI appends a CI-suppression token to the continue commit message.
	SkipCI bool
}

// NewWorkflow builds a workflow around the template repository's engine.
func NewWorkflow(logger *zap.Logger, shellExecutor *execshell.ShellExecutor, templateEngine *gitsync.Engine, options WorkflowOptions) (*Workflow, error) {
	if logger == nil {
		return nil, errors.New(loggerRequiredMessageConstant)
	}
	if shellExecutor == nil {
		return nil, errors.New(executorRequiredMessageConstant)
	}
	if templateEngine == nil {
		return nil, errors.New(templateRequiredMessageConstant)
	}

	return &Workflow{
		logger:          logger,
		shellExecutor:   shellExecutor,
		templateEngine:  templateEngine,
		includeOptional: options.IncludeOptional,
		skipCI:          options.SkipCI,
	}, nil
}

// Start stages the template's pending changes against one clean target: it
// resolves the previous template commit, diffs it against the template HEAD,
// filters the diff to the manifest's generated files, rewrites placeholder
// tokens with the target's recorded values, records the staged state, and
// hands the unified text to the external patch tool. The committed delta is
// not touched; that is continue's job.
func (workflow *Workflow) Start(executionContext context.Context, targetPath string) error {
	stateStore := NewStateStore(targetPath)
	if stateStore.InProgress() {
		return ErrApplyAlreadyInProgress
	}

	targetEngine, engineError := gitsync.NewEngine(targetPath, workflow.shellExecutor, nil)
	if engineError != nil {
		return engineError
	}

	targetStatus, statusError := targetEngine.Status(executionContext, false)
	if statusError != nil {
		return statusError
	}
	if !targetStatus.IsClean() {
		return ErrDirtyWorkingTree
	}

	templateHeadHash, headError := workflow.templateEngine.HeadHash()
	if headError != nil {
		return headError
	}

	templateHeadCommit, commitError := workflow.templateEngine.ResolveCommit(templateHeadHash)
	if commitError != nil {
		return commitError
	}

	templateManifest, manifestError := template.ManifestAtCommit(templateHeadCommit)
	if manifestError != nil {
		return manifestError
	}

	targetDelta, deltaError := template.ReadTargetDelta(template.DeltaPath(targetPath))
	if deltaError != nil {
		return deltaError
	}

	if templateManifest.RevisionID <= targetDelta.RevisionID {
		return fmt.Errorf(revisionGuardTemplateConstant, ErrRevisionNotAdvanced, templateManifest.RevisionID, targetDelta.RevisionID)
	}

	previousTemplateHash, resolveError := template.ResolvePreviousSHA(workflow.templateEngine.Repository(), targetDelta)
	if resolveError != nil {
		return resolveError
	}

	templatePatch, diffError := workflow.templateEngine.DiffTrees(previousTemplateHash, templateHeadHash)
	if diffError != nil {
		return diffError
	}

	patchFiles := patch.FromObjectPatch(templatePatch)
	propagatedFiles := patch.FilterToFileSet(patchFiles, templateManifest.GenerateFiles(workflow.includeOptional))

	rewrittenFiles, substitutionError := patch.SubstituteFiles(propagatedFiles, targetDelta.Replacements)
	if substitutionError != nil {
		return substitutionError
	}

	unifiedText := patch.UnifiedText(rewrittenFiles)
	pendingDelta := targetDelta.Updated(templateManifest.RevisionID, templateHeadHash.String())

	if stagingError := stateStore.MarkStaged(unifiedText, pendingDelta); stagingError != nil {
		return stagingError
	}

	workflow.logger.Info(
		applyStagedMessageConstant,
		zap.String(logFieldRepositoryConstant, targetPath),
		zap.Int(logFieldRevisionConstant, pendingDelta.RevisionID),
		zap.Int(logFieldPatchedFileCountConstant, len(rewrittenFiles)),
		zap.String(logFieldTemplateCommitShaConstant, pendingDelta.TemplateSHA),
	)

	if len(unifiedText) == 0 {
		workflow.logger.Info(emptyPatchNothingStagedLogConstant, zap.String(logFieldRepositoryConstant, targetPath))
		return nil
	}

	return workflow.runExternalPatch(executionContext, targetPath, unifiedText)
}

// Continue commits a staged apply once the caller has resolved any rejects
// and staged every change, then persists the pending delta as the target's
// committed delta and clears the staged state. When the commit itself fails
// the previous committed delta is put back and the staged apply stays in
// place, so the tree never claims a revision no commit records; the caller
// can retry continue or abort.
func (workflow *Workflow) Continue(executionContext context.Context, targetPath string) error {
	stateStore := NewStateStore(targetPath)
	if !stateStore.InProgress() {
		return ErrNoApplyInProgress
	}

	targetEngine, engineError := gitsync.NewEngine(targetPath, workflow.shellExecutor, nil)
	if engineError != nil {
		return engineError
	}

	targetStatus, statusError := targetEngine.Status(executionContext, false)
	if statusError != nil {
		return statusError
	}
	if !targetStatus.IsFullyStaged() {
		return ErrNotClean
	}

	pendingDelta, pendingError := stateStore.PendingDelta()
	if pendingError != nil {
		return pendingError
	}

	committedDeltaPath := template.DeltaPath(targetPath)
	previousDelta, previousDeltaError := template.ReadTargetDelta(committedDeltaPath)
	if previousDeltaError != nil {
		return previousDeltaError
	}

	if deltaWriteError := template.WriteTargetDelta(committedDeltaPath, pendingDelta); deltaWriteError != nil {
		return deltaWriteError
	}

	if stageError := targetEngine.StageAll(); stageError != nil {
		workflow.restoreCommittedDelta(targetEngine, committedDeltaPath, previousDelta, targetPath)
		return stageError
	}

	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, pendingDelta.RevisionID)
	if workflow.skipCI {
		commitMessage += skipCIMessageSuffixConstant
	}

	commitHash, commitError := targetEngine.CommitStaged(commitMessage, nil)
	if commitError != nil {
		workflow.restoreCommittedDelta(targetEngine, committedDeltaPath, previousDelta, targetPath)
		return commitError
	}

	workflow.logger.Info(
		applyCommittedMessageConstant,
		zap.String(logFieldRepositoryConstant, targetPath),
		zap.Int(logFieldRevisionConstant, pendingDelta.RevisionID),
		zap.String(logFieldCommittedCommitShaConstant, commitHash.String()),
	)

	return stateStore.Clear()
}

// Abort discards every working-tree change and staged artifact, returning
// the repository to its pre-start state. Aborting a repository with no
// staged apply is a no-op, so abort is idempotent.
func (workflow *Workflow) Abort(executionContext context.Context, targetPath string) error {
	stateStore := NewStateStore(targetPath)
	if !stateStore.InProgress() {
		workflow.logger.Debug(abortWithoutMarkerDebugLogConstant, zap.String(logFieldRepositoryConstant, targetPath))
		return nil
	}

	targetEngine, engineError := gitsync.NewEngine(targetPath, workflow.shellExecutor, nil)
	if engineError != nil {
		return engineError
	}

	if discardError := targetEngine.DiscardWorkingTree(); discardError != nil {
		return discardError
	}

	if clearError := stateStore.Clear(); clearError != nil {
		return clearError
	}

	workflow.logger.Info(applyAbortedMessageConstant, zap.String(logFieldRepositoryConstant, targetPath))
	return nil
}

// restoreCommittedDelta rewrites the previously committed delta after a
// failed continue, re-staging it so worktree and index agree again. Restore
// failures are logged, not returned; the original failure matters more.
func (workflow *Workflow) restoreCommittedDelta(targetEngine *gitsync.Engine, committedDeltaPath string, previousDelta template.TargetDelta, targetPath string) {
	if restoreError := template.WriteTargetDelta(committedDeltaPath, previousDelta); restoreError != nil {
		workflow.logger.Warn(deltaRestoreFailedLogConstant, zap.String(logFieldRepositoryConstant, targetPath), zap.Error(restoreError))
		return
	}
	if stageError := targetEngine.StageAll(); stageError != nil {
		workflow.logger.Warn(deltaRestoreFailedLogConstant, zap.String(logFieldRepositoryConstant, targetPath), zap.Error(stageError))
	}
}

// runExternalPatch hands the staged unified text to the patch tool at strip
// level one. A non-zero exit leaves reject artifacts in the tree for manual
// resolution and surfaces the tool's output verbatim; the staged state stays
// in place either way.
func (workflow *Workflow) runExternalPatch(executionContext context.Context, targetPath string, unifiedText string) error {
	executionResult, executionError := workflow.shellExecutor.ExecutePatch(executionContext, execshell.CommandDetails{
		Arguments:        []string{patchStripLevelArgumentConstant},
		WorkingDirectory: targetPath,
		StandardInput:    []byte(unifiedText),
	})
	if executionError != nil {
		workflow.logger.Warn(
			patchConflictArtifactsLogConstant,
			zap.String(logFieldRepositoryConstant, targetPath),
			zap.String(logFieldPatchStandardOutputConstant, executionResult.StandardOutput),
		)
		return fmt.Errorf(patchFailureTemplateConstant, executionError)
	}

	return nil
}
