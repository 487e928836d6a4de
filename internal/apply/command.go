package apply

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gutops/gut/internal/execshell"
	"github.com/gutops/gut/internal/fleet"
	"github.com/gutops/gut/internal/gitsync"
	"github.com/gutops/gut/internal/hosting"
)

const (
	commandUseConstant               = "apply"
	commandShortDescriptionConstant  = "Propagate template changes into every generated repository"
	commandLongDescriptionConstant   = "apply stages the template's pending diff against each target repository, rewrites placeholder tokens with each target's recorded values, and drives the start/continue/abort workflow per repository."
	flagTemplateNameConstant         = "template"
	flagTemplateShortConstant        = "t"
	flagTemplateUsageConstant        = "Path to the template repository"
	flagOrganisationNameConstant     = "organisation"
	flagOrganisationShortConstant    = "o"
	flagOrganisationUsageConstant    = "Target organisation name"
	flagRegexNameConstant            = "regex"
	flagRegexShortConstant           = "r"
	flagRegexUsageConstant           = "Regex filter on repository names"
	flagContinueNameConstant         = "continue"
	flagContinueUsageConstant        = "Commit a previously staged apply after manual resolution"
	flagAbortNameConstant            = "abort"
	flagAbortUsageConstant           = "Discard a previously staged apply and restore the tree"
	flagOptionalNameConstant         = "optional"
	flagOptionalUsageConstant        = "Propagate the manifest's optional files as well"
	flagSkipCINameConstant           = "skip-ci"
	flagSkipCIUsageConstant          = "Mark the continue commit so downstream CI skips it"
	flagConcurrencyNameConstant      = "concurrency"
	flagConcurrencyUsageConstant     = "Bounded worker-pool size for fleet operations"
	missingTemplateErrorConstant     = "a template repository path is required"
	missingOrganisationErrorConstant = "an organisation is required (flag or configuration)"
	exclusiveModeErrorConstant       = "at most one of --continue and --abort may be set"
	unexpectedArgumentsErrorConstant = "apply does not accept positional arguments"
	stagedStatusLabelConstant        = "staged"
	committedStatusLabelConstant     = "committed"
	abortedStatusLabelConstant       = "aborted"
	emptyFleetLogMessageConstant     = "no repositories in organisation matched"
	logFieldOrganisationNameConstant = "organisation"
)

var (
	errMissingTemplate     = errors.New(missingTemplateErrorConstant)
	errMissingOrganisation = errors.New(missingOrganisationErrorConstant)
	errExclusiveModes      = errors.New(exclusiveModeErrorConstant)
	errUnexpectedArguments = errors.New(unexpectedArgumentsErrorConstant)
)

// CommandBuilder assembles the apply command around shared providers.
type CommandBuilder struct {
	LoggerProvider    fleet.LoggerProvider
	WorkspaceProvider fleet.WorkspaceProvider
	OutputWriter      io.Writer
}

// Build constructs the apply command.
func (builder *CommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagTemplateNameConstant, flagTemplateShortConstant, "", flagTemplateUsageConstant)
	command.Flags().StringP(flagOrganisationNameConstant, flagOrganisationShortConstant, "", flagOrganisationUsageConstant)
	command.Flags().StringP(flagRegexNameConstant, flagRegexShortConstant, "", flagRegexUsageConstant)
	command.Flags().Bool(flagContinueNameConstant, false, flagContinueUsageConstant)
	command.Flags().Bool(flagAbortNameConstant, false, flagAbortUsageConstant)
	command.Flags().Bool(flagOptionalNameConstant, false, flagOptionalUsageConstant)
	command.Flags().Bool(flagSkipCINameConstant, false, flagSkipCIUsageConstant)
	command.Flags().Int(flagConcurrencyNameConstant, 0, flagConcurrencyUsageConstant)

	return command
}

// run performs setup and fans the selected workflow step out over the fleet.
// Only setup failures produce a non-zero exit; per-repository failures are
// reported in the table and do not alone fail the process.
func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	continueRequested, _ := command.Flags().GetBool(flagContinueNameConstant)
	abortRequested, _ := command.Flags().GetBool(flagAbortNameConstant)
	if continueRequested && abortRequested {
		return errExclusiveModes
	}

	templatePath, _ := command.Flags().GetString(flagTemplateNameConstant)
	if len(templatePath) == 0 {
		return errMissingTemplate
	}

	workspace := fleet.Workspace{}
	if builder.WorkspaceProvider != nil {
		workspace = builder.WorkspaceProvider()
	}

	organisation, _ := command.Flags().GetString(flagOrganisationNameConstant)
	if len(organisation) == 0 {
		organisation = workspace.Organisation
	}
	if len(organisation) == 0 {
		return errMissingOrganisation
	}

	concurrency, _ := command.Flags().GetInt(flagConcurrencyNameConstant)
	if concurrency <= 0 {
		concurrency = workspace.Concurrency
	}

	regexPattern, _ := command.Flags().GetString(flagRegexNameConstant)
	var nameFilter *hosting.NameFilter
	if len(regexPattern) > 0 {
		compiledFilter, filterError := hosting.NewNameFilter(regexPattern)
		if filterError != nil {
			return filterError
		}
		nameFilter = compiledFilter
	}

	logger := builder.resolveLogger()

	localRepositories, discoveryError := hosting.DiscoverFleet(workspace.RootDirectory, organisation, nameFilter)
	if discoveryError != nil {
		return discoveryError
	}
	if len(localRepositories) == 0 {
		logger.Info(emptyFleetLogMessageConstant, zap.String(logFieldOrganisationNameConstant, organisation))
		return nil
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return executorError
	}

	templateEngine, templateEngineError := gitsync.NewEngine(templatePath, shellExecutor, nil)
	if templateEngineError != nil {
		return templateEngineError
	}

	includeOptional, _ := command.Flags().GetBool(flagOptionalNameConstant)
	skipCI, _ := command.Flags().GetBool(flagSkipCINameConstant)

	workflow, workflowError := NewWorkflow(logger, shellExecutor, templateEngine, WorkflowOptions{
		IncludeOptional: includeOptional,
		SkipCI:          skipCI,
	})
	if workflowError != nil {
		return workflowError
	}

	workflowStep, stepLabel := builder.selectWorkflowStep(workflow, continueRequested, abortRequested)

	handles := make([]fleet.RepositoryHandle, 0, len(localRepositories))
	for _, localRepository := range localRepositories {
		remoteRepository := hosting.NewRemoteRepository(localRepository.Owner, localRepository.Name)
		handles = append(handles, fleet.RepositoryHandle{
			Name:           localRepository.Name,
			Owner:          localRepository.Owner,
			SSHRemoteURL:   remoteRepository.SSHURL,
			HTTPSRemoteURL: remoteRepository.HTTPSURL,
			LocalPath:      localRepository.Path,
		})
	}

	applyOperation := func(executionContext context.Context, handle fleet.RepositoryHandle) (string, error) {
		if stepError := workflowStep(executionContext, handle.LocalPath); stepError != nil {
			return "", stepError
		}
		return stepLabel, nil
	}

	outcomes := fleet.Run(command.Context(), handles, applyOperation, concurrency)
	reportRows, summary := fleet.BuildReport(outcomes, func(outcome fleet.Outcome[string]) (fleet.ReportRow, fleet.Summary) {
		return fleet.ReportRow{Repository: outcome.Handle.Name, Status: outcome.Result}, fleet.Summary{Success: 1}
	})

	outputWriter := builder.OutputWriter
	if outputWriter == nil {
		outputWriter = os.Stdout
	}
	fleet.RenderTable(outputWriter, reportRows, summary)

	return nil
}

func (builder *CommandBuilder) selectWorkflowStep(workflow *Workflow, continueRequested bool, abortRequested bool) (func(context.Context, string) error, string) {
	switch {
	case continueRequested:
		return workflow.Continue, committedStatusLabelConstant
	case abortRequested:
		return workflow.Abort, abortedStatusLabelConstant
	default:
		return workflow.Start, stagedStatusLabelConstant
	}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
