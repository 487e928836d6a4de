package gitsync

import (
	"errors"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/gutops/gut/internal/credentials"
	"github.com/gutops/gut/internal/execshell"
)

const (
	// DefaultRemoteName is the remote every fleet operation targets unless told otherwise.
	DefaultRemoteName = "origin"

	executorRequiredMessageConstant = "git synchronization engine requires a shell executor"
)

// Engine performs synchronization operations against one local repository.
// Every operation is strictly sequential within the repository; distinct
// repositories get distinct engines and share no mutable state.
type Engine struct {
	repositoryPath string
	repository     *git.Repository
	shellExecutor  *execshell.ShellExecutor
	authResolver   *credentials.AuthResolver
}

// NewEngine opens the repository at repositoryPath. The authResolver may be
// nil for purely local workflows; the shell executor is mandatory because
// merge, rebase, and stash delegate to the git command line.
func NewEngine(repositoryPath string, shellExecutor *execshell.ShellExecutor, authResolver *credentials.AuthResolver) (*Engine, error) {
	if shellExecutor == nil {
		return nil, errors.New(executorRequiredMessageConstant)
	}

	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, openError
	}

	return &Engine{
		repositoryPath: repositoryPath,
		repository:     repository,
		shellExecutor:  shellExecutor,
		authResolver:   authResolver,
	}, nil
}

// RepositoryPath returns the working-tree root the engine operates on.
func (engine *Engine) RepositoryPath() string {
	return engine.repositoryPath
}

// Repository exposes the underlying go-git repository for read-only plumbing.
func (engine *Engine) Repository() *git.Repository {
	return engine.repository
}

// HeadHash resolves the current HEAD commit.
func (engine *Engine) HeadHash() (plumbing.Hash, error) {
	headReference, headError := engine.repository.Head()
	if headError != nil {
		return plumbing.ZeroHash, headError
	}
	return headReference.Hash(), nil
}

// CurrentBranch returns the short name of the checked-out branch, or
// ErrHeadNotBranch on a detached HEAD.
func (engine *Engine) CurrentBranch() (string, error) {
	headReference, headError := engine.repository.Head()
	if headError != nil {
		return "", headError
	}
	if !headReference.Name().IsBranch() {
		return "", ErrHeadNotBranch
	}
	return headReference.Name().Short(), nil
}

// ResolveCommit loads the commit object for the given hash.
func (engine *Engine) ResolveCommit(commitHash plumbing.Hash) (*object.Commit, error) {
	return engine.repository.CommitObject(commitHash)
}

// DiffTrees computes the tree-to-tree diff between two commits. Renames are
// not specially detected; a rename surfaces as a delete plus an add.
func (engine *Engine) DiffTrees(oldCommitHash plumbing.Hash, newCommitHash plumbing.Hash) (*object.Patch, error) {
	oldTree, oldTreeError := engine.commitTree(oldCommitHash)
	if oldTreeError != nil {
		return nil, oldTreeError
	}

	newTree, newTreeError := engine.commitTree(newCommitHash)
	if newTreeError != nil {
		return nil, newTreeError
	}

	treeChanges, diffError := object.DiffTree(oldTree, newTree)
	if diffError != nil {
		return nil, diffError
	}

	return treeChanges.Patch()
}

// StageAll stages every addition, modification, and deletion in the working tree.
func (engine *Engine) StageAll() error {
	workTree, workTreeError := engine.repository.Worktree()
	if workTreeError != nil {
		return workTreeError
	}
	return workTree.AddWithOptions(&git.AddOptions{All: true})
}

// CommitStaged commits the staged tree. A nil author falls back to the
// repository's configured identity.
func (engine *Engine) CommitStaged(message string, author *object.Signature) (plumbing.Hash, error) {
	workTree, workTreeError := engine.repository.Worktree()
	if workTreeError != nil {
		return plumbing.ZeroHash, workTreeError
	}
	return workTree.Commit(message, &git.CommitOptions{Author: author})
}

// DiscardWorkingTree hard-resets the working tree to HEAD and removes
// untracked files and directories.
func (engine *Engine) DiscardWorkingTree() error {
	workTree, workTreeError := engine.repository.Worktree()
	if workTreeError != nil {
		return workTreeError
	}

	if resetError := workTree.Reset(&git.ResetOptions{Mode: git.HardReset}); resetError != nil {
		return resetError
	}

	return workTree.Clean(&git.CleanOptions{Dir: true})
}

func (engine *Engine) commitTree(commitHash plumbing.Hash) (*object.Tree, error) {
	treeCommit, commitError := engine.repository.CommitObject(commitHash)
	if commitError != nil {
		return nil, commitError
	}
	return treeCommit.Tree()
}

func (engine *Engine) authMethodForRemote(remoteName string) (transport.AuthMethod, error) {
	if engine.authResolver == nil {
		return nil, nil
	}

	remote, remoteError := engine.repository.Remote(remoteName)
	if remoteError != nil {
		return nil, remoteError
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return nil, nil
	}

	return engine.authResolver.AuthMethodFor(remoteURLs[0])
}
