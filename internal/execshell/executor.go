package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	loggerRequiredMessageConstant        = "shell executor requires a logger"
	commandRunnerRequiredMessageConstant = "shell executor requires a command runner"
	commandStartedMessageConstant        = "external command started"
	commandCompletedMessageConstant      = "external command completed"
	commandFailedMessageConstant         = "external command failed"
	logFieldToolNameConstant             = "tool"
	logFieldArgumentsConstant            = "arguments"
	logFieldWorkingDirectoryConstant     = "working_directory"
	logFieldExitCodeConstant             = "exit_code"
)

// ShellExecutor coordinates command construction, execution, and logging.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
}

// NewShellExecutor builds a ShellExecutor around the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, errors.New(loggerRequiredMessageConstant)
	}
	if commandRunner == nil {
		return nil, errors.New(commandRunnerRequiredMessageConstant)
	}

	return &ShellExecutor{logger: logger, commandRunner: commandRunner}, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecutePatch runs the patch tool with the provided details.
func (executor *ShellExecutor) ExecutePatch(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandPatch, Details: details})
}

// Execute runs an arbitrary supported command and maps non-zero exits to CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		commandStartedMessageConstant,
		zap.String(logFieldToolNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Debug(
			commandFailedMessageConstant,
			zap.String(logFieldToolNameConstant, string(command.Name)),
			zap.Error(runError),
		)
		return ExecutionResult{}, runError
	}

	executor.logger.Debug(
		commandCompletedMessageConstant,
		zap.String(logFieldToolNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)

	if executionResult.ExitCode != 0 {
		return executionResult, &CommandFailedError{Command: command, Result: executionResult}
	}

	return executionResult, nil
}
