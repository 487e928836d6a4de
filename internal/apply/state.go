package apply

import (
	"os"
	"path/filepath"

	"github.com/gutops/gut/internal/template"
)

const (
	gitDirectoryNameConstant     = ".git"
	stateDirectoryNameConstant   = "gut"
	statusMarkerFileNameConstant = "apply-status"
	stagedPatchFileNameConstant  = "staged.patch"
	pendingDeltaFileNameConstant = "pending-delta.toml"
	statusMarkerContentsConstant = "staged\n"
	stateFilePermissionsConstant = 0o644
	stateDirectoryPermsConstant  = 0o755
)

// StateStore manages the untracked apply-in-progress directory inside a
// target repository's .git. The status marker's existence is the apply
// state machine's only persisted fact.
type StateStore struct {
	repositoryPath string
}

// NewStateStore binds a store to one target repository.
func NewStateStore(repositoryPath string) StateStore {
	return StateStore{repositoryPath: repositoryPath}
}

// InProgress reports whether a staged apply exists for the repository.
func (store StateStore) InProgress() bool {
	_, statError := os.Stat(store.markerPath())
	return statError == nil
}

// StagedPatchPath returns where the staged unified-diff text lives.
func (store StateStore) StagedPatchPath() string {
	return filepath.Join(store.directoryPath(), stagedPatchFileNameConstant)
}

// MarkStaged persists the staged patch text and the pending delta, then
// drops the status marker. The marker is written last so a partial write
// never looks like a live apply.
func (store StateStore) MarkStaged(stagedPatchText string, pendingDelta template.TargetDelta) error {
	if directoryError := os.MkdirAll(store.directoryPath(), stateDirectoryPermsConstant); directoryError != nil {
		return directoryError
	}

	if patchError := os.WriteFile(store.StagedPatchPath(), []byte(stagedPatchText), stateFilePermissionsConstant); patchError != nil {
		return patchError
	}

	if deltaError := template.WriteTargetDelta(store.pendingDeltaPath(), pendingDelta); deltaError != nil {
		return deltaError
	}

	return os.WriteFile(store.markerPath(), []byte(statusMarkerContentsConstant), stateFilePermissionsConstant)
}

// PendingDelta reads back the delta recorded by MarkStaged.
func (store StateStore) PendingDelta() (template.TargetDelta, error) {
	return template.ReadTargetDelta(store.pendingDeltaPath())
}

// Clear removes the marker and every staged artifact. Clearing a store that
// holds nothing is a no-op.
func (store StateStore) Clear() error {
	return os.RemoveAll(store.directoryPath())
}

func (store StateStore) directoryPath() string {
	return filepath.Join(store.repositoryPath, gitDirectoryNameConstant, stateDirectoryNameConstant)
}

func (store StateStore) markerPath() string {
	return filepath.Join(store.directoryPath(), statusMarkerFileNameConstant)
}

func (store StateStore) pendingDeltaPath() string {
	return filepath.Join(store.directoryPath(), pendingDeltaFileNameConstant)
}
