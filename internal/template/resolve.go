package template

import (
	"errors"
	"path"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	toml "github.com/pelletier/go-toml/v2"
)

const manifestRepositoryPathConstant = MetadataDirectoryName + "/" + ManifestFileName

// ErrNoMatchingRevision reports a history walk that exhausted the template
// repository without finding a manifest whose rev_id matches the target's
// recorded revision.
var ErrNoMatchingRevision = errors.New("no template commit carries the recorded revision")

// ManifestAtCommit reads the manifest blob committed in the given template revision.
func ManifestAtCommit(templateCommit *object.Commit) (Manifest, error) {
	manifestFile, fileError := templateCommit.File(path.Clean(manifestRepositoryPathConstant))
	if fileError != nil {
		return Manifest{}, fileError
	}

	manifestContents, contentsError := manifestFile.Contents()
	if contentsError != nil {
		return Manifest{}, contentsError
	}

	parsedManifest := Manifest{}
	if unmarshalError := toml.Unmarshal([]byte(manifestContents), &parsedManifest); unmarshalError != nil {
		return Manifest{}, unmarshalError
	}

	return parsedManifest, nil
}

// ResolvePreviousSHA locates the template commit the next diff should be
// computed from. The recorded template SHA is used directly while it still
// resolves; otherwise the template history is walked oldest-first and the
// first commit whose manifest rev_id equals the target's recorded revision
// wins. The fallback makes the system resilient to a template history that
// was rewritten or garbage-collected after the target last synchronized.
func ResolvePreviousSHA(templateRepository *git.Repository, targetDelta TargetDelta) (plumbing.Hash, error) {
	if len(targetDelta.TemplateSHA) > 0 {
		recordedHash := plumbing.NewHash(targetDelta.TemplateSHA)
		if _, commitError := templateRepository.CommitObject(recordedHash); commitError == nil {
			return recordedHash, nil
		}
	}

	commitIterator, logError := templateRepository.Log(&git.LogOptions{})
	if logError != nil {
		return plumbing.ZeroHash, logError
	}

	var reverseChronological []*object.Commit
	iterationError := commitIterator.ForEach(func(templateCommit *object.Commit) error {
		reverseChronological = append(reverseChronological, templateCommit)
		return nil
	})
	if iterationError != nil {
		return plumbing.ZeroHash, iterationError
	}

	for commitIndex := len(reverseChronological) - 1; commitIndex >= 0; commitIndex-- {
		candidateCommit := reverseChronological[commitIndex]

		candidateManifest, manifestError := ManifestAtCommit(candidateCommit)
		if manifestError != nil {
			// Commits predating the manifest do not participate in the walk.
			continue
		}

		if candidateManifest.RevisionID == targetDelta.RevisionID {
			return candidateCommit.Hash, nil
		}
	}

	return plumbing.ZeroHash, ErrNoMatchingRevision
}
