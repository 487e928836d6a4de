package template

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// MetadataDirectoryName is the tracked metadata directory inside template and target repositories.
	MetadataDirectoryName = ".gut"
	// ManifestFileName is the manifest file name inside the metadata directory.
	ManifestFileName = "template.toml"
	// DeltaFileName is the target delta file name inside the metadata directory.
	DeltaFileName = "delta.toml"

	manifestReadErrorTemplateConstant  = "unable to read template manifest %s: %w"
	manifestParseErrorTemplateConstant = "unable to parse template manifest %s: %w"
	metadataFilePermissionsConstant    = 0o644
	metadataDirectoryPermsConstant     = 0o755
)

// Manifest is the template-side record of the generated-file contract.
type Manifest struct {
	Name       string   `toml:"name"`
	Patterns   []string `toml:"patterns"`
	RevisionID int      `toml:"rev_id"`
	Required   []string `toml:"required"`
	Optional   []string `toml:"optional"`
	Ignored    []string `toml:"ignored"`
}

// GenerateFiles returns the propagated file list: required files plus,
// when requested, the optional ones.
func (manifest Manifest) GenerateFiles(includeOptional bool) []string {
	generatedFiles := make([]string, 0, len(manifest.Required)+len(manifest.Optional))
	generatedFiles = append(generatedFiles, manifest.Required...)
	if includeOptional {
		generatedFiles = append(generatedFiles, manifest.Optional...)
	}
	return generatedFiles
}

// ManifestPath returns the manifest location inside a repository working tree.
func ManifestPath(repositoryPath string) string {
	return filepath.Join(repositoryPath, MetadataDirectoryName, ManifestFileName)
}

// ReadManifest loads and parses the manifest at the provided path.
func ReadManifest(manifestPath string) (Manifest, error) {
	manifestBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	parsedManifest := Manifest{}
	if unmarshalError := toml.Unmarshal(manifestBytes, &parsedManifest); unmarshalError != nil {
		return Manifest{}, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, unmarshalError)
	}

	return parsedManifest, nil
}

// WriteManifest serializes the manifest to the provided path, creating the
// metadata directory when necessary.
func WriteManifest(manifestPath string, manifest Manifest) error {
	return writeTOMLFile(manifestPath, manifest)
}

func writeTOMLFile(filePath string, document any) error {
	documentBytes, marshalError := toml.Marshal(document)
	if marshalError != nil {
		return marshalError
	}

	if directoryError := os.MkdirAll(filepath.Dir(filePath), metadataDirectoryPermsConstant); directoryError != nil {
		return directoryError
	}

	return os.WriteFile(filePath, documentBytes, metadataFilePermissionsConstant)
}
