package template

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	deltaReadErrorTemplateConstant  = "unable to read target delta %s: %w"
	deltaParseErrorTemplateConstant = "unable to parse target delta %s: %w"
)

// TargetDelta is the target-side record of the last applied template revision
// and the substitution values used to generate the repository.
type TargetDelta struct {
	TemplateRef  string            `toml:"template"`
	RevisionID   int               `toml:"rev_id"`
	TemplateSHA  string            `toml:"template_sha"`
	Replacements map[string]string `toml:"replacements"`
}

// Updated derives the delta recorded after a successful apply: a new revision
// and template commit, with the replacement values carried over unchanged.
func (delta TargetDelta) Updated(revisionID int, templateSHA string) TargetDelta {
	return TargetDelta{
		TemplateRef:  delta.TemplateRef,
		RevisionID:   revisionID,
		TemplateSHA:  templateSHA,
		Replacements: delta.Replacements,
	}
}

// DeltaPath returns the tracked delta location inside a repository working tree.
func DeltaPath(repositoryPath string) string {
	return filepath.Join(repositoryPath, MetadataDirectoryName, DeltaFileName)
}

// ReadTargetDelta loads and parses the delta at the provided path.
func ReadTargetDelta(deltaPath string) (TargetDelta, error) {
	deltaBytes, readError := os.ReadFile(deltaPath)
	if readError != nil {
		return TargetDelta{}, fmt.Errorf(deltaReadErrorTemplateConstant, deltaPath, readError)
	}

	parsedDelta := TargetDelta{}
	if unmarshalError := toml.Unmarshal(deltaBytes, &parsedDelta); unmarshalError != nil {
		return TargetDelta{}, fmt.Errorf(deltaParseErrorTemplateConstant, deltaPath, unmarshalError)
	}

	return parsedDelta, nil
}

// WriteTargetDelta serializes the delta to the provided path, creating the
// metadata directory when necessary.
func WriteTargetDelta(deltaPath string, delta TargetDelta) error {
	return writeTOMLFile(deltaPath, delta)
}
