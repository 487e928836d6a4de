package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gutops/gut/internal/fleet"
)

const (
	testConfigurationFileNameConstant = "gut.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: error\nfleet:\n  root: /srv/fleet\n  organisation: acme\n  concurrency: 3\n"
)

func TestInitializeConfigurationResolvesWorkspace(t *testing.T) {
	configurationPath := filepath.Join(t.TempDir(), testConfigurationFileNameConstant)
	require.NoError(t, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o644))

	application := NewApplication()
	application.configurationFilePath = configurationPath

	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	workspace := application.workspaceProvider()
	require.Equal(t, fleet.Workspace{
		RootDirectory: "/srv/fleet",
		Organisation:  "acme",
		Concurrency:   3,
	}, workspace)
}

func TestInitializeConfigurationAppliesEmbeddedDefaults(t *testing.T) {
	application := NewApplication()

	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	workspace := application.workspaceProvider()
	require.Equal(t, ".", workspace.RootDirectory)
	require.Equal(t, fleet.DefaultConcurrency, workspace.Concurrency)
	require.Equal(t, "info", application.configuration.Common.LogLevel)
}

func TestRootCommandRegistersFleetSubcommands(t *testing.T) {
	application := NewApplication()

	registeredNames := make([]string, 0)
	for _, subcommand := range application.rootCommand.Commands() {
		registeredNames = append(registeredNames, subcommand.Name())
	}

	for _, expectedName := range []string{"pull", "push", "status", "create-branch", "apply"} {
		require.Contains(t, registeredNames, expectedName)
	}
}

func TestPersistentLogLevelFlagOverridesConfiguration(t *testing.T) {
	application := NewApplication()
	require.NoError(t, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))

	require.NoError(t, application.initializeConfiguration(application.rootCommand))
	require.Equal(t, "debug", application.configuration.Common.LogLevel)
}
