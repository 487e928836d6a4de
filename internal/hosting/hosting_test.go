package hosting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gutops/gut/internal/hosting"
)

const (
	testOrganisationConstant = "acme"
	testOwnerNameConstant    = "acme"
	testRepositoryConstant   = "lang-en"
)

func makeRepositoryDirectory(testInstance *testing.T, rootDirectory string, organisation string, repositoryName string, withGitMetadata bool) {
	repositoryPath := filepath.Join(rootDirectory, organisation, repositoryName)
	require.NoError(testInstance, os.MkdirAll(repositoryPath, 0o755))
	if withGitMetadata {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".git"), 0o755))
	}
}

func TestNewRemoteRepositoryDerivesBothURLForms(testInstance *testing.T) {
	remoteRepository := hosting.NewRemoteRepository(testOwnerNameConstant, testRepositoryConstant)

	require.Equal(testInstance, "git@github.com:acme/lang-en.git", remoteRepository.SSHURL)
	require.Equal(testInstance, "https://github.com/acme/lang-en.git", remoteRepository.HTTPSURL)
}

func TestNameFilter(testInstance *testing.T) {
	compiledFilter, filterError := hosting.NewNameFilter("^lang-")
	require.NoError(testInstance, filterError)
	require.True(testInstance, compiledFilter.Matches("lang-en"))
	require.False(testInstance, compiledFilter.Matches("tooling"))

	var nilFilter *hosting.NameFilter
	require.True(testInstance, nilFilter.Matches("anything"))

	_, malformedError := hosting.NewNameFilter("lang-(")
	require.Error(testInstance, malformedError)
}

func TestDiscoverFleet(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	makeRepositoryDirectory(testInstance, rootDirectory, testOrganisationConstant, "lang-en", true)
	makeRepositoryDirectory(testInstance, rootDirectory, testOrganisationConstant, "lang-sv", true)
	makeRepositoryDirectory(testInstance, rootDirectory, testOrganisationConstant, "tooling", true)
	makeRepositoryDirectory(testInstance, rootDirectory, testOrganisationConstant, "not-a-repo", false)

	nameFilter, filterError := hosting.NewNameFilter("^lang-")
	require.NoError(testInstance, filterError)

	fleet, discoveryError := hosting.DiscoverFleet(rootDirectory, testOrganisationConstant, nameFilter)
	require.NoError(testInstance, discoveryError)

	discoveredNames := make([]string, 0, len(fleet))
	for _, localRepository := range fleet {
		discoveredNames = append(discoveredNames, localRepository.Name)
		require.Equal(testInstance, testOrganisationConstant, localRepository.Owner)
	}
	require.Equal(testInstance, []string{"lang-en", "lang-sv"}, discoveredNames)

	unfiltered, unfilteredError := hosting.DiscoverFleet(rootDirectory, testOrganisationConstant, nil)
	require.NoError(testInstance, unfilteredError)
	require.Len(testInstance, unfiltered, 3)

	_, missingError := hosting.DiscoverFleet(rootDirectory, "missing-org", nil)
	require.Error(testInstance, missingError)
}
