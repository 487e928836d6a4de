package hosting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	gitMetadataDirectoryNameConstant    = ".git"
	missingOrganisationTemplateConstant = "organisation directory %s does not exist: %w"
)

// DiscoverFleet lists the organisation's cloned repositories under the root
// directory. The expected layout is root/<organisation>/<repository>; a
// directory counts as a repository when it carries git metadata. Results are
// name-sorted so every run reports the fleet in the same order.
func DiscoverFleet(rootDirectory string, organisation string, nameFilter *NameFilter) ([]LocalRepository, error) {
	organisationPath := filepath.Join(rootDirectory, organisation)

	directoryEntries, readError := os.ReadDir(organisationPath)
	if readError != nil {
		return nil, fmt.Errorf(missingOrganisationTemplateConstant, organisationPath, readError)
	}

	var fleet []LocalRepository
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}

		repositoryName := directoryEntry.Name()
		if !nameFilter.Matches(repositoryName) {
			continue
		}

		repositoryPath := filepath.Join(organisationPath, repositoryName)
		if !hasGitMetadata(repositoryPath) {
			continue
		}

		fleet = append(fleet, LocalRepository{
			Name:  repositoryName,
			Owner: organisation,
			Path:  repositoryPath,
		})
	}

	sort.Slice(fleet, func(firstIndex, secondIndex int) bool {
		return fleet[firstIndex].Name < fleet[secondIndex].Name
	})

	return fleet, nil
}

func hasGitMetadata(repositoryPath string) bool {
	metadataInfo, statError := os.Stat(filepath.Join(repositoryPath, gitMetadataDirectoryNameConstant))
	return statError == nil && metadataInfo.IsDir()
}
