package gitsync

const (
	fastForwardOutcomeNameConstant  = "fast-forward"
	normalOutcomeNameConstant       = "normal"
	withConflictOutcomeNameConstant = "with-conflict"
	skipConflictOutcomeNameConstant = "skip-conflict"
	nothingOutcomeNameConstant      = "nothing"
)

// MergeOutcome is the terminal result of one pull invocation. Conflicted
// outcomes are ordinary results the caller must branch on, not errors.
type MergeOutcome string

// Pull outcome enumerations.
const (
	// MergeOutcomeFastForward reports a branch pointer advance without a merge commit.
	MergeOutcomeFastForward MergeOutcome = MergeOutcome(fastForwardOutcomeNameConstant)
	// MergeOutcomeNormal reports a three-way merge commit or a completed rebase.
	MergeOutcomeNormal MergeOutcome = MergeOutcome(normalOutcomeNameConstant)
	// MergeOutcomeWithConflict reports a halted merge or rebase left conflicted for manual resolution.
	MergeOutcomeWithConflict MergeOutcome = MergeOutcome(withConflictOutcomeNameConstant)
	// MergeOutcomeSkipConflict reports a conflicting merge or rebase that was backed out on request.
	MergeOutcomeSkipConflict MergeOutcome = MergeOutcome(skipConflictOutcomeNameConstant)
	// MergeOutcomeNothing reports an already up-to-date branch.
	MergeOutcomeNothing MergeOutcome = MergeOutcome(nothingOutcomeNameConstant)
)

// String renders the outcome name.
func (outcome MergeOutcome) String() string {
	return string(outcome)
}
