// Package gitsync implements the git synchronization engine: working-tree
// status classification, fetch, pull with explicit merge outcomes, push,
// stash, branch creation and checkout, and tree-to-tree diffs.
//
// Reference reads, fast-forward updates, fetches, and pushes run in-process
// through go-git. Three-way merges, rebases, and stashes shell out to the
// git command line, which owns the conflict machinery and leaves the index
// in the standard conflicted state for manual resolution.
package gitsync
