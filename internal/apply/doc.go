// Package apply drives one target repository through the template
// propagation state machine: start stages a rewritten patch against a clean
// tree, continue commits the resolved result and advances the recorded
// delta, abort restores the pre-start state.
//
// The in-progress marker directory under the target's .git is the single
// source of truth for "an apply is running" and the only concurrency guard;
// a second start while it exists fails instead of queuing.
package apply
