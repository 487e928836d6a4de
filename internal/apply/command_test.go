package apply_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/gutops/gut/internal/apply"
	"github.com/gutops/gut/internal/fleet"
	"github.com/gutops/gut/internal/template"
)

const (
	testOrganisationConstant     = "acme"
	testFleetRepositoryConstant  = "lang-en"
	stagedStatusLabelConstant    = "staged"
	committedStatusLabelConstant = "committed"
)

func newApplyCommandBuilder(rootDirectory string, outputBuffer *bytes.Buffer) *apply.CommandBuilder {
	return &apply.CommandBuilder{
		WorkspaceProvider: func() fleet.Workspace {
			return fleet.Workspace{RootDirectory: rootDirectory, Organisation: testOrganisationConstant}
		},
		OutputWriter: outputBuffer,
	}
}

func TestApplyCommandFlagValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "continue_and_abort_are_exclusive", arguments: []string{"--template", "tmpl", "--continue", "--abort"}, expectedError: "at most one of --continue and --abort"},
		{name: "template_is_required", arguments: []string{"--organisation", testOrganisationConstant}, expectedError: "template repository path is required"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commandBuilder := &apply.CommandBuilder{}
			command := commandBuilder.Build()
			command.SetOut(io.Discard)
			command.SetErr(io.Discard)
			command.SetArgs(testCase.arguments)

			executionError := command.Execute()
			require.ErrorContains(testInstance, executionError, testCase.expectedError)
		})
	}
}

func TestApplyCommandDrivesFleetThroughStartAndContinue(testInstance *testing.T) {
	templatePath, templateRepository := initRepositoryWithIdentity(testInstance)
	firstRevisionHash := commitTemplateRevision(testInstance, templatePath, templateRepository, 1, testInitialFileConstant)
	commitTemplateRevision(testInstance, templatePath, templateRepository, 2, testUpdatedFileConstant)

	rootDirectory := testInstance.TempDir()
	targetPath := filepath.Join(rootDirectory, testOrganisationConstant, testFleetRepositoryConstant)
	targetRepository := initTargetRepositoryAt(testInstance, targetPath, firstRevisionHash.String())

	outputBuffer := &bytes.Buffer{}
	commandBuilder := newApplyCommandBuilder(rootDirectory, outputBuffer)

	startCommand := commandBuilder.Build()
	startCommand.SetOut(io.Discard)
	startCommand.SetErr(io.Discard)
	startCommand.SetArgs([]string{"--template", templatePath})
	require.NoError(testInstance, startCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), stagedStatusLabelConstant)

	patchedContents, readError := os.ReadFile(filepath.Join(targetPath, testTargetFileNameConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testExpectedTargetConstant, string(patchedContents))

	workTree, workTreeError := targetRepository.Worktree()
	require.NoError(testInstance, workTreeError)
	require.NoError(testInstance, workTree.AddWithOptions(&git.AddOptions{All: true}))

	outputBuffer.Reset()
	continueCommand := commandBuilder.Build()
	continueCommand.SetOut(io.Discard)
	continueCommand.SetErr(io.Discard)
	continueCommand.SetArgs([]string{"--template", templatePath, "--continue"})
	require.NoError(testInstance, continueCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), committedStatusLabelConstant)

	committedDelta, deltaError := template.ReadTargetDelta(template.DeltaPath(targetPath))
	require.NoError(testInstance, deltaError)
	require.Equal(testInstance, 2, committedDelta.RevisionID)

	// A per-repository failure must not fail the process: a second start is
	// rejected per repository (revision already applied) yet exits zero.
	outputBuffer.Reset()
	repeatCommand := commandBuilder.Build()
	repeatCommand.SetOut(io.Discard)
	repeatCommand.SetErr(io.Discard)
	repeatCommand.SetArgs([]string{"--template", templatePath})
	require.NoError(testInstance, repeatCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), "failed")
}
