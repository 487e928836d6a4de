package fleet

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gutops/gut/internal/credentials"
	"github.com/gutops/gut/internal/execshell"
	"github.com/gutops/gut/internal/gitsync"
	"github.com/gutops/gut/internal/hosting"
)

const (
	pullCommandUseConstant            = "pull"
	pullCommandShortConstant          = "Pull the current branch of every repository in the fleet"
	pushCommandUseConstant            = "push"
	pushCommandShortConstant          = "Push the current branch of every repository that is ahead"
	statusCommandUseConstant          = "status"
	statusCommandShortConstant        = "Classify the working tree of every repository in the fleet"
	createBranchCommandUseConstant    = "create-branch"
	createBranchCommandShortConstant  = "Create a branch in every repository in the fleet"
	flagOrganisationNameConstant      = "organisation"
	flagOrganisationShortConstant     = "o"
	flagOrganisationUsageConstant     = "Target organisation name"
	flagRegexNameConstant             = "regex"
	flagRegexShortConstant            = "r"
	flagRegexUsageConstant            = "Regex filter on repository names"
	flagConcurrencyNameConstant       = "concurrency"
	flagConcurrencyUsageConstant      = "Bounded worker-pool size for fleet operations"
	flagStashNameConstant             = "stash"
	flagStashUsageConstant            = "Stash dirty trees before pulling (the stash stays unapplied)"
	flagUseMergeNameConstant          = "use-merge"
	flagUseMergeUsageConstant         = "Create a merge commit instead of rebasing on divergence"
	flagIncludeIgnoredNameConstant    = "ignored"
	flagIncludeIgnoredUsageConstant   = "List gitignored files among the untracked ones"
	flagBranchNameConstant            = "name"
	flagBranchNameUsageConstant       = "Name of the branch to create"
	flagBranchBaseConstant            = "base"
	flagBranchBaseUsageConstant       = "Base branch to fork from (defaults to each repository's current branch)"
	missingOrganisationErrorConstant  = "an organisation is required (flag or configuration)"
	missingBranchNameErrorConstant    = "a branch name is required"
	unexpectedArgumentsErrorConstant  = "fleet commands do not accept positional arguments"
	emptyFleetMessageTemplateConstant = "no repositories in organisation matched"
	logFieldOrganisationConstant      = "organisation"
)

var (
	errMissingOrganisation = errors.New(missingOrganisationErrorConstant)
	errMissingBranchName   = errors.New(missingBranchNameErrorConstant)
	errUnexpectedArguments = errors.New(unexpectedArgumentsErrorConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// Workspace carries the process-wide settings every fleet command needs,
// threaded explicitly instead of read from ambient state.
type Workspace struct {
	RootDirectory string
	Organisation  string
	Concurrency   int
	Token         string
	TokenUsername string
	SSHKeyPath    string
}

// WorkspaceProvider supplies the resolved workspace configuration.
type WorkspaceProvider func() Workspace

// CommandBuilder assembles the fleet subcommands around shared providers.
type CommandBuilder struct {
	LoggerProvider    LoggerProvider
	WorkspaceProvider WorkspaceProvider
	OutputWriter      io.Writer
}

// BuildPullCommand constructs the fleet pull command.
func (builder *CommandBuilder) BuildPullCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   pullCommandUseConstant,
		Short: pullCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}

			stashDirty, _ := command.Flags().GetBool(flagStashNameConstant)
			useMerge, _ := command.Flags().GetBool(flagUseMergeNameConstant)

			return builder.runFleet(command, func(engineFactory EngineFactory) fleetExecution {
				pullOperation := NewPullOperation(engineFactory, PullBehavior{
					StashDirty:  stashDirty,
					PullOptions: gitsync.PullOptions{UseMerge: useMerge},
				})
				return func(runContext commandRunContext) {
					outcomes := Run(command.Context(), runContext.handles, pullOperation, runContext.concurrency)
					reportRows, summary := BuildReport(outcomes, PullRow)
					RenderTable(runContext.outputWriter, reportRows, summary)
				}
			})
		},
	}

	builder.registerFleetFlags(command)
	command.Flags().Bool(flagStashNameConstant, false, flagStashUsageConstant)
	command.Flags().Bool(flagUseMergeNameConstant, false, flagUseMergeUsageConstant)
	return command
}

// BuildPushCommand constructs the fleet push command.
func (builder *CommandBuilder) BuildPushCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}

			return builder.runFleet(command, func(engineFactory EngineFactory) fleetExecution {
				pushOperation := NewPushOperation(engineFactory, gitsync.DefaultRemoteName)
				return func(runContext commandRunContext) {
					outcomes := Run(command.Context(), runContext.handles, pushOperation, runContext.concurrency)
					reportRows, summary := BuildReport(outcomes, PushRow)
					RenderTable(runContext.outputWriter, reportRows, summary)
				}
			})
		},
	}

	builder.registerFleetFlags(command)
	return command
}

// BuildStatusCommand constructs the fleet status command.
func (builder *CommandBuilder) BuildStatusCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}

			includeIgnored, _ := command.Flags().GetBool(flagIncludeIgnoredNameConstant)

			return builder.runFleet(command, func(engineFactory EngineFactory) fleetExecution {
				statusOperation := NewStatusOperation(engineFactory, includeIgnored)
				return func(runContext commandRunContext) {
					outcomes := Run(command.Context(), runContext.handles, statusOperation, runContext.concurrency)
					reportRows, summary := BuildReport(outcomes, StatusRow)
					RenderTable(runContext.outputWriter, reportRows, summary)
				}
			})
		},
	}

	builder.registerFleetFlags(command)
	command.Flags().Bool(flagIncludeIgnoredNameConstant, false, flagIncludeIgnoredUsageConstant)
	return command
}

// BuildCreateBranchCommand constructs the fleet create-branch command.
func (builder *CommandBuilder) BuildCreateBranchCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   createBranchCommandUseConstant,
		Short: createBranchCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}

			newBranchName, _ := command.Flags().GetString(flagBranchNameConstant)
			if len(newBranchName) == 0 {
				return errMissingBranchName
			}
			baseBranchName, _ := command.Flags().GetString(flagBranchBaseConstant)

			return builder.runFleet(command, func(engineFactory EngineFactory) fleetExecution {
				createOperation := NewCreateBranchOperation(engineFactory, newBranchName, baseBranchName)
				return func(runContext commandRunContext) {
					outcomes := Run(command.Context(), runContext.handles, createOperation, runContext.concurrency)
					reportRows, summary := BuildReport(outcomes, CreateBranchRow)
					RenderTable(runContext.outputWriter, reportRows, summary)
				}
			})
		},
	}

	builder.registerFleetFlags(command)
	command.Flags().String(flagBranchNameConstant, "", flagBranchNameUsageConstant)
	command.Flags().String(flagBranchBaseConstant, "", flagBranchBaseUsageConstant)
	return command
}

type commandRunContext struct {
	handles      []RepositoryHandle
	concurrency  int
	outputWriter io.Writer
}

type fleetExecution func(runContext commandRunContext)

// runFleet performs the shared setup: resolve configuration, discover the
// fleet, build engines, and hand execution off. Only setup failures return
// an error; per-repository failures live in the report.
func (builder *CommandBuilder) runFleet(command *cobra.Command, buildExecution func(engineFactory EngineFactory) fleetExecution) error {
	workspace := builder.resolveWorkspace()
	logger := builder.resolveLogger()

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

	localRepositories, discoveryError := hosting.DiscoverFleet(workspace.RootDirectory, organisation, nameFilter)
	if discoveryError != nil {
		return discoveryError
	}
	if len(localRepositories) == 0 {
		logger.Info(emptyFleetMessageTemplateConstant, zap.String(logFieldOrganisationConstant, organisation))
		return nil
	}

	handles := make([]RepositoryHandle, 0, len(localRepositories))
	for _, localRepository := range localRepositories {
		remoteRepository := hosting.NewRemoteRepository(localRepository.Owner, localRepository.Name)
		handles = append(handles, RepositoryHandle{
			Name:           localRepository.Name,
			Owner:          localRepository.Owner,
			SSHRemoteURL:   remoteRepository.SSHURL,
			HTTPSRemoteURL: remoteRepository.HTTPSURL,
			LocalPath:      localRepository.Path,
		})
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return executorError
	}

	authResolver := builder.resolveAuthResolver(workspace)
	engineFactory := func(repositoryPath string) (*gitsync.Engine, error) {
		return gitsync.NewEngine(repositoryPath, shellExecutor, authResolver)
	}

	outputWriter := builder.OutputWriter
	if outputWriter == nil {
		outputWriter = os.Stdout
	}

	execution := buildExecution(engineFactory)
	execution(commandRunContext{handles: handles, concurrency: concurrency, outputWriter: outputWriter})
	return nil
}

func (builder *CommandBuilder) registerFleetFlags(command *cobra.Command) {
	command.Flags().StringP(flagOrganisationNameConstant, flagOrganisationShortConstant, "", flagOrganisationUsageConstant)
	command.Flags().StringP(flagRegexNameConstant, flagRegexShortConstant, "", flagRegexUsageConstant)
	command.Flags().Int(flagConcurrencyNameConstant, 0, flagConcurrencyUsageConstant)
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

func (builder *CommandBuilder) resolveWorkspace() Workspace {
	if builder.WorkspaceProvider == nil {
		return Workspace{}
	}
	return builder.WorkspaceProvider()
}

func (builder *CommandBuilder) resolveAuthResolver(workspace Workspace) *credentials.AuthResolver {
	if len(workspace.Token) == 0 && len(workspace.SSHKeyPath) == 0 {
		return nil
	}

	tokenProvider := credentials.StaticTokenProvider{
		Username: workspace.TokenUsername,
		Token:    workspace.Token,
	}
	return credentials.NewAuthResolver(tokenProvider, workspace.SSHKeyPath)
}
