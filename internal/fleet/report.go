package fleet

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	// ErrorDetailWidth is the fixed width error details are wrapped to for display.
	ErrorDetailWidth = 80

	reportRepositoryHeaderConstant = "Repository"
	reportStatusHeaderConstant     = "Status"
	reportDetailsHeaderConstant    = "Details"
	reportTotalLabelConstant       = "TOTAL"
	reportFailedLabelConstant      = "failed"
	reportSucceededLabelConstant   = "ok"
	detailLineSeparatorConstant    = "\n"
)

// Summary aggregates one fleet run. Dirty, conflicted, and stashed counts
// only apply to synchronization operations; other operations leave them zero.
type Summary struct {
	Success    int
	Failed     int
	Dirty      int
	Conflicted int
	Stashed    int
}

// ReportRow is one repository's display line.
type ReportRow struct {
	Repository string
	Status     string
	Details    string
}

// RowBuilder converts one outcome into its display row and summary deltas.
type RowBuilder[ResultType any] func(outcome Outcome[ResultType]) (ReportRow, Summary)

// BuildReport folds outcomes into display rows plus an aggregated summary,
// preserving outcome order. Failed outcomes get their error detail wrapped
// to fixed-width lines; the supplied builder shapes successful ones.
func BuildReport[ResultType any](outcomes []Outcome[ResultType], buildRow RowBuilder[ResultType]) ([]ReportRow, Summary) {
	reportRows := make([]ReportRow, 0, len(outcomes))
	aggregatedSummary := Summary{}

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			reportRows = append(reportRows, ReportRow{
				Repository: outcome.Handle.Name,
				Status:     reportFailedLabelConstant,
				Details:    WrapDetail(outcome.Err.Error()),
			})
			aggregatedSummary.Failed++
			continue
		}

		outcomeRow, outcomeSummary := buildRow(outcome)
		reportRows = append(reportRows, outcomeRow)
		aggregatedSummary.Success += outcomeSummary.Success
		aggregatedSummary.Failed += outcomeSummary.Failed
		aggregatedSummary.Dirty += outcomeSummary.Dirty
		aggregatedSummary.Conflicted += outcomeSummary.Conflicted
		aggregatedSummary.Stashed += outcomeSummary.Stashed
	}

	return reportRows, aggregatedSummary
}

// RenderTable writes the rows and summary as a bordered table.
func RenderTable(outputWriter io.Writer, reportRows []ReportRow, summary Summary) {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(outputWriter)
	tableWriter.SetStyle(table.StyleLight)
	tableWriter.AppendHeader(table.Row{reportRepositoryHeaderConstant, reportStatusHeaderConstant, reportDetailsHeaderConstant})

	for _, reportRow := range reportRows {
		tableWriter.AppendRow(table.Row{reportRow.Repository, reportRow.Status, reportRow.Details})
	}

	tableWriter.AppendFooter(table.Row{reportTotalLabelConstant, summaryLabel(summary), ""})
	tableWriter.Render()
}

// WrapDetail breaks a detail message into fixed-width lines so long errors
// stay readable inside the report table. Width is counted in runes, never
// splitting a multibyte character across lines.
func WrapDetail(detailText string) string {
	detailRunes := []rune(detailText)
	if len(detailRunes) <= ErrorDetailWidth {
		return detailText
	}

	var wrappedLines []string
	for len(detailRunes) > ErrorDetailWidth {
		wrappedLines = append(wrappedLines, string(detailRunes[:ErrorDetailWidth]))
		detailRunes = detailRunes[ErrorDetailWidth:]
	}
	if len(detailRunes) > 0 {
		wrappedLines = append(wrappedLines, string(detailRunes))
	}

	return strings.Join(wrappedLines, detailLineSeparatorConstant)
}

func summaryLabel(summary Summary) string {
	summaryText := fmt.Sprintf("%s: %d, %s: %d", reportSucceededLabelConstant, summary.Success, reportFailedLabelConstant, summary.Failed)
	if summary.Dirty > 0 {
		summaryText += fmt.Sprintf(", dirty: %d", summary.Dirty)
	}
	if summary.Conflicted > 0 {
		summaryText += fmt.Sprintf(", conflicted: %d", summary.Conflicted)
	}
	if summary.Stashed > 0 {
		summaryText += fmt.Sprintf(", stashed: %d", summary.Stashed)
	}
	return summaryText
}
