package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gutops/gut/internal/execshell"
)

const (
	executorSubtestNameTemplateConstant = "%d_%s"
	stubStandardOutputConstant          = "stub output"
	stubStandardErrorConstant           = "stub failure detail"
	runnerFailureMessageConstant        = "runner exploded"
)

type stubCommandRunner struct {
	result       execshell.ExecutionResult
	runError     error
	lastCommand  execshell.ShellCommand
	invocationNo int
}

func (runner *stubCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.lastCommand = command
	runner.invocationNo++
	return runner.result, runner.runError
}

func TestShellExecutorExecuteGit(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectFailure    bool
		expectExitError  bool
		expectedExitCode int
	}{
		{
			name:         "successful_command_returns_result",
			runnerResult: execshell.ExecutionResult{StandardOutput: stubStandardOutputConstant, ExitCode: 0},
		},
		{
			name:             "non_zero_exit_surfaces_typed_error",
			runnerResult:     execshell.ExecutionResult{StandardError: stubStandardErrorConstant, ExitCode: 1},
			expectFailure:    true,
			expectExitError:  true,
			expectedExitCode: 1,
		},
		{
			name:          "runner_error_propagates",
			runnerError:   errors.New(runnerFailureMessageConstant),
			expectFailure: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(executorSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			commandRunner := &stubCommandRunner{result: testCase.runnerResult, runError: testCase.runnerError}
			shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), commandRunner)
			require.NoError(testInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})

			require.Equal(testInstance, execshell.CommandGit, commandRunner.lastCommand.Name)
			if !testCase.expectFailure {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, stubStandardOutputConstant, executionResult.StandardOutput)
				return
			}

			require.Error(testInstance, executionError)
			if testCase.expectExitError {
				commandFailure := &execshell.CommandFailedError{}
				require.ErrorAs(testInstance, executionError, &commandFailure)
				require.Equal(testInstance, testCase.expectedExitCode, commandFailure.Result.ExitCode)
				require.Contains(testInstance, commandFailure.Error(), stubStandardErrorConstant)
			}
		})
	}
}

func TestNewShellExecutorValidation(testInstance *testing.T) {
	_, missingLoggerError := execshell.NewShellExecutor(nil, &stubCommandRunner{})
	require.Error(testInstance, missingLoggerError)

	_, missingRunnerError := execshell.NewShellExecutor(zap.NewNop(), nil)
	require.Error(testInstance, missingRunnerError)
}
