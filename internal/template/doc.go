// Package template holds the durable metadata that links generated
// repositories to the template they were created from.
//
// The template repository carries a Manifest (.gut/template.toml) describing
// which files are subject to propagation and the current propagatable
// revision. Each target repository carries a TargetDelta (.gut/delta.toml)
// recording the template revision it was last synchronized to and its
// concrete substitution values.
package template
