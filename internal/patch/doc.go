// Package patch models unified diffs as a line-addressable structure.
//
// A diff is parsed into Files whose Lines form a closed sum type
// (Add, Delete, Move, Hunk, Info). Serializing the lines back in order
// reproduces the original unified-diff body byte for byte, which lets the
// apply workflow rewrite placeholder tokens inside a patch and still hand a
// valid document to an external patch tool.
package patch
