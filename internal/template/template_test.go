package template_test

import (
	"fmt"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/gutops/gut/internal/template"
)

const (
	testTemplateNameConstant       = "Language Template"
	testPatternTokenConstant       = "__UND__"
	testRequiredFileConstant       = "lang-__UND__.txt"
	testNestedRequiredFileConstant = "src/__UND__/__UND__.txt"
	testOptionalFileConstant       = "b.txt"
	testIgnoredFileConstant        = "c.txt"
	testReplacementValueConstant   = "en"
	testCommitterNameConstant      = "Fleet Maintainer"
	testCommitterEmailConstant     = "fleet@example.com"
	commitMessageTemplateConstant  = "template revision %d"
	unknownTemplateSHAConstant     = "ab4139e82667a373b7ca56f70bfa27c6fb116c85"
)

func sampleManifest(revisionID int) template.Manifest {
	return template.Manifest{
		Name:       testTemplateNameConstant,
		Patterns:   []string{testPatternTokenConstant},
		RevisionID: revisionID,
		Required:   []string{testNestedRequiredFileConstant, testRequiredFileConstant},
		Optional:   []string{testOptionalFileConstant},
		Ignored:    []string{testIgnoredFileConstant},
	}
}

func testSignature() *object.Signature {
	return &object.Signature{Name: testCommitterNameConstant, Email: testCommitterEmailConstant, When: time.Now()}
}

func commitManifestRevision(testInstance *testing.T, repositoryPath string, repository *git.Repository, revisionID int) plumbing.Hash {
	writeError := template.WriteManifest(template.ManifestPath(repositoryPath), sampleManifest(revisionID))
	require.NoError(testInstance, writeError)

	workTree, workTreeError := repository.Worktree()
	require.NoError(testInstance, workTreeError)

	_, addError := workTree.Add(template.MetadataDirectoryName)
	require.NoError(testInstance, addError)

	commitHash, commitError := workTree.Commit(fmt.Sprintf(commitMessageTemplateConstant, revisionID), &git.CommitOptions{Author: testSignature()})
	require.NoError(testInstance, commitError)

	return commitHash
}

func TestManifestGenerateFiles(testInstance *testing.T) {
	manifest := sampleManifest(2)

	require.Equal(testInstance, []string{testNestedRequiredFileConstant, testRequiredFileConstant}, manifest.GenerateFiles(false))
	require.Equal(testInstance, []string{testNestedRequiredFileConstant, testRequiredFileConstant, testOptionalFileConstant}, manifest.GenerateFiles(true))
}

func TestManifestRoundTrip(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	manifestPath := template.ManifestPath(repositoryPath)

	require.NoError(testInstance, template.WriteManifest(manifestPath, sampleManifest(2)))

	loadedManifest, readError := template.ReadManifest(manifestPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, sampleManifest(2), loadedManifest)
}

func TestTargetDeltaRoundTripAndUpdate(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	deltaPath := template.DeltaPath(repositoryPath)

	originalDelta := template.TargetDelta{
		TemplateRef:  testTemplateNameConstant,
		RevisionID:   1,
		TemplateSHA:  unknownTemplateSHAConstant,
		Replacements: map[string]string{testPatternTokenConstant: testReplacementValueConstant},
	}
	require.NoError(testInstance, template.WriteTargetDelta(deltaPath, originalDelta))

	loadedDelta, readError := template.ReadTargetDelta(deltaPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, originalDelta, loadedDelta)

	updatedDelta := loadedDelta.Updated(2, "feedbeef")
	require.Equal(testInstance, 2, updatedDelta.RevisionID)
	require.Equal(testInstance, "feedbeef", updatedDelta.TemplateSHA)
	require.Equal(testInstance, originalDelta.Replacements, updatedDelta.Replacements)
	require.Equal(testInstance, 1, loadedDelta.RevisionID)
}

func TestResolvePreviousSHA(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	repository, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)

	firstRevisionHash := commitManifestRevision(testInstance, repositoryPath, repository, 1)
	secondRevisionHash := commitManifestRevision(testInstance, repositoryPath, repository, 2)

	testInstance.Run("recorded_sha_still_resolves", func(testInstance *testing.T) {
		targetDelta := template.TargetDelta{RevisionID: 1, TemplateSHA: secondRevisionHash.String()}
		resolvedHash, resolveError := template.ResolvePreviousSHA(repository, targetDelta)
		require.NoError(testInstance, resolveError)
		require.Equal(testInstance, secondRevisionHash, resolvedHash)
	})

	testInstance.Run("rewritten_sha_falls_back_to_revision_walk", func(testInstance *testing.T) {
		targetDelta := template.TargetDelta{RevisionID: 1, TemplateSHA: unknownTemplateSHAConstant}
		resolvedHash, resolveError := template.ResolvePreviousSHA(repository, targetDelta)
		require.NoError(testInstance, resolveError)
		require.Equal(testInstance, firstRevisionHash, resolvedHash)
	})

	testInstance.Run("unknown_revision_reports_named_error", func(testInstance *testing.T) {
		targetDelta := template.TargetDelta{RevisionID: 5, TemplateSHA: unknownTemplateSHAConstant}
		_, resolveError := template.ResolvePreviousSHA(repository, targetDelta)
		require.ErrorIs(testInstance, resolveError, template.ErrNoMatchingRevision)
	})
}
