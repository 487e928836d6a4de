package execshell

import (
	"fmt"
	"strings"
)

const (
	gitToolNameConstant              = "git"
	patchToolNameConstant            = "patch"
	commandFailureTemplateConstant   = "%s %s exited with code %d: %s"
	commandArgumentsJoinConstant     = " "
	emptyStandardErrorLabelConstant  = "(no stderr)"
	standardErrorTrimCutsetConstant  = "\n"
	commandLabelFallbackNameConstant = "command"
)

// CommandName identifies a supported executable.
type CommandName string

// Supported tool enumerations.
const (
	CommandGit   CommandName = CommandName(gitToolNameConstant)
	CommandPatch CommandName = CommandName(patchToolNameConstant)
)

// CommandDetails describes a tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the failed command with its exit code and captured stderr.
func (failure *CommandFailedError) Error() string {
	commandName := commandLabelFallbackNameConstant
	if len(failure.Command.Name) > 0 {
		commandName = string(failure.Command.Name)
	}

	standardError := strings.Trim(failure.Result.StandardError, standardErrorTrimCutsetConstant)
	if len(standardError) == 0 {
		standardError = emptyStandardErrorLabelConstant
	}

	return fmt.Sprintf(
		commandFailureTemplateConstant,
		commandName,
		strings.Join(failure.Command.Details.Arguments, commandArgumentsJoinConstant),
		failure.Result.ExitCode,
		standardError,
	)
}
