package fleet_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/gutops/gut/internal/fleet"
	"github.com/gutops/gut/internal/gitsync"
)

const (
	testFleetSizeConstant        = 5
	testFailingIndexConstant     = 2
	testConcurrencyConstant      = 2
	testRepositoryNameTemplate   = "repository-%d"
	testOperationResultConstant  = "done"
	testEngineeredFailureMessage = "engineered failure"
)

func testHandles(handleCount int) []fleet.RepositoryHandle {
	handles := make([]fleet.RepositoryHandle, 0, handleCount)
	for handleIndex := 0; handleIndex < handleCount; handleIndex++ {
		handles = append(handles, fleet.RepositoryHandle{Name: fmt.Sprintf(testRepositoryNameTemplate, handleIndex)})
	}
	return handles
}

func TestRunIsolatesFailuresAndPreservesOrder(testInstance *testing.T) {
	handles := testHandles(testFleetSizeConstant)
	engineeredFailure := errors.New(testEngineeredFailureMessage)

	operation := func(executionContext context.Context, handle fleet.RepositoryHandle) (string, error) {
		if handle.Name == fmt.Sprintf(testRepositoryNameTemplate, testFailingIndexConstant) {
			return "", engineeredFailure
		}
		// Finish out of dispatch order to exercise result-slot addressing.
		time.Sleep(time.Millisecond)
		return testOperationResultConstant, nil
	}

	outcomes := fleet.Run(context.Background(), handles, operation, testConcurrencyConstant)

	require.Len(testInstance, outcomes, testFleetSizeConstant)
	for outcomeIndex, outcome := range outcomes {
		require.Equal(testInstance, fmt.Sprintf(testRepositoryNameTemplate, outcomeIndex), outcome.Handle.Name)
		if outcomeIndex == testFailingIndexConstant {
			require.ErrorIs(testInstance, outcome.Err, engineeredFailure)
			continue
		}
		require.NoError(testInstance, outcome.Err)
		require.Equal(testInstance, testOperationResultConstant, outcome.Result)
	}
}

func TestRunDefaultsConcurrency(testInstance *testing.T) {
	operation := func(executionContext context.Context, handle fleet.RepositoryHandle) (string, error) {
		return testOperationResultConstant, nil
	}

	outcomes := fleet.Run(context.Background(), testHandles(1), operation, 0)
	require.Len(testInstance, outcomes, 1)
	require.NoError(testInstance, outcomes[0].Err)
}

func TestBuildReportCountsFailuresAndWrapsDetails(testInstance *testing.T) {
	longFailure := errors.New(strings.Repeat("x", fleet.ErrorDetailWidth+25))
	outcomes := []fleet.Outcome[string]{
		{Handle: fleet.RepositoryHandle{Name: "ok-repo"}, Result: testOperationResultConstant},
		{Handle: fleet.RepositoryHandle{Name: "bad-repo"}, Err: longFailure},
	}

	reportRows, summary := fleet.BuildReport(outcomes, func(outcome fleet.Outcome[string]) (fleet.ReportRow, fleet.Summary) {
		return fleet.ReportRow{Repository: outcome.Handle.Name, Status: outcome.Result}, fleet.Summary{Success: 1}
	})

	require.Len(testInstance, reportRows, 2)
	require.Equal(testInstance, 1, summary.Success)
	require.Equal(testInstance, 1, summary.Failed)

	detailLines := strings.Split(reportRows[1].Details, "\n")
	require.Len(testInstance, detailLines, 2)
	require.Len(testInstance, detailLines[0], fleet.ErrorDetailWidth)
	require.Len(testInstance, detailLines[1], 25)
}

func TestWrapDetailKeepsMultibyteRunesIntact(testInstance *testing.T) {
	multibyteDetail := strings.Repeat("é", fleet.ErrorDetailWidth+5)

	wrappedDetail := fleet.WrapDetail(multibyteDetail)

	detailLines := strings.Split(wrappedDetail, "\n")
	require.Len(testInstance, detailLines, 2)
	require.True(testInstance, utf8.ValidString(detailLines[0]))
	require.True(testInstance, utf8.ValidString(detailLines[1]))
	require.Equal(testInstance, fleet.ErrorDetailWidth, utf8.RuneCountInString(detailLines[0]))
	require.Equal(testInstance, 5, utf8.RuneCountInString(detailLines[1]))
}

func TestPullRowClassification(testInstance *testing.T) {
	testCases := []struct {
		name               string
		outcome            fleet.Outcome[fleet.SyncResult]
		expectedStatus     string
		expectedDirty      int
		expectedConflicted int
		expectedStashed    int
	}{
		{
			name:           "fast_forward",
			outcome:        fleet.Outcome[fleet.SyncResult]{Result: fleet.SyncResult{Outcome: gitsync.MergeOutcomeFastForward}},
			expectedStatus: gitsync.MergeOutcomeFastForward.String(),
		},
		{
			name:           "skipped_dirty",
			outcome:        fleet.Outcome[fleet.SyncResult]{Result: fleet.SyncResult{Outcome: gitsync.MergeOutcomeNothing, SkippedDirty: true, Status: gitsync.SyncStatus{Modified: []string{"a.txt"}}}},
			expectedStatus: "skipped (dirty)",
			expectedDirty:  1,
		},
		{
			name:               "conflicted_tree_is_skipped",
			outcome:            fleet.Outcome[fleet.SyncResult]{Result: fleet.SyncResult{Outcome: gitsync.MergeOutcomeNothing, SkippedDirty: true, Status: gitsync.SyncStatus{Conflicted: []string{"a.txt"}}}},
			expectedStatus:     "skipped (conflicted)",
			expectedConflicted: 1,
		},
		{
			name:               "pull_with_conflict",
			outcome:            fleet.Outcome[fleet.SyncResult]{Result: fleet.SyncResult{Outcome: gitsync.MergeOutcomeWithConflict}},
			expectedStatus:     gitsync.MergeOutcomeWithConflict.String(),
			expectedConflicted: 1,
		},
		{
			name:            "stashed_then_pulled",
			outcome:         fleet.Outcome[fleet.SyncResult]{Result: fleet.SyncResult{Outcome: gitsync.MergeOutcomeFastForward, Stashed: true}},
			expectedStatus:  gitsync.MergeOutcomeFastForward.String(),
			expectedStashed: 1,
		},
	}

	for caseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", caseIndex, testCase.name), func(testInstance *testing.T) {
			reportRow, summary := fleet.PullRow(testCase.outcome)
			require.Equal(testInstance, testCase.expectedStatus, reportRow.Status)
			require.Equal(testInstance, testCase.expectedDirty, summary.Dirty)
			require.Equal(testInstance, testCase.expectedConflicted, summary.Conflicted)
			require.Equal(testInstance, testCase.expectedStashed, summary.Stashed)
			require.Equal(testInstance, 1, summary.Success)
		})
	}
}
