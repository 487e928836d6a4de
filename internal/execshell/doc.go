// Package execshell wraps external tool invocation for the synchronization
// engine. It executes git and patch with captured output and structured
// logging, and surfaces non-zero exits as typed errors callers can branch on.
package execshell
