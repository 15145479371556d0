// Package observability provides formatted output utilities for verbose CLI
// mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintBundle outputs a human-readable summary of the matched content bundle.
func (p *Printer) PrintBundle(bundle *types.HybridContentBundle) {
	if bundle == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Routine:    %s\n", bundle.RoutineType.DisplayName()))
	if bundle.ReportID != "" {
		sb.WriteString(fmt.Sprintf("Report:     %s\n", bundle.ReportID))
	}
	if bundle.VideoID != "" {
		sb.WriteString(fmt.Sprintf("Video:      %s\n", bundle.VideoID))
	}
	sb.WriteString(fmt.Sprintf("Urgency:    %s\n", bundle.Urgency))
	sb.WriteString(fmt.Sprintf("Confidence: %s\n", bundle.Confidence))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Reason: %s\n", bundle.MatchReason))
	sb.WriteString(fmt.Sprintf("CTA:    %s", bundle.RecommendedCTA))

	p.printBox(fmt.Sprintf("Content Bundle (%s)", bundle.BundleID), sb.String())
}

// PrintDrafts outputs the routed drafts in priority order, highest first.
// Only the first few message lines of each draft are shown.
func (p *Printer) PrintDrafts(drafts []*types.PBActionDraft) {
	if len(drafts) == 0 {
		return
	}

	var sb strings.Builder
	for i, draft := range drafts {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s  (priority %d, %s)\n",
			i+1, draft.CustomerID, draft.FollowUpPriority, draft.OutreachChannel))
		sb.WriteString(fmt.Sprintf("   %s\n", draft.Traceability))

		for j, line := range strings.Split(draft.ClientMessageDraft, "\n") {
			if j >= maxItemsToShow {
				sb.WriteString("   ...\n")
				break
			}
			sb.WriteString(fmt.Sprintf("   %s\n", line))
		}
	}

	p.printBox(fmt.Sprintf("PB Action Drafts (%d)", len(drafts)), strings.TrimRight(sb.String(), "\n"))
}

// PrintAudit outputs the audit record written for the run.
func (p *Printer) PrintAudit(audit *types.AuditRecord) {
	if audit == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Workflow:  %s\n", audit.WorkflowName))
	sb.WriteString(fmt.Sprintf("Timestamp: %s\n", audit.Timestamp.Format("2006-01-02 15:04:05")))
	if audit.ReportID != "" {
		sb.WriteString(fmt.Sprintf("Report:    %s\n", audit.ReportID))
	}
	if audit.VideoID != "" {
		sb.WriteString(fmt.Sprintf("Video:     %s\n", audit.VideoID))
	}
	sb.WriteString(fmt.Sprintf("Review:    %s\n", audit.HumanReviewStatus))
	sb.WriteString(fmt.Sprintf("Rationale: %s", audit.Rationale))

	p.printBox(fmt.Sprintf("Audit Record (%s)", audit.AuditID), sb.String())
}

// PrintCandidates lists today's non-selected reports.
func (p *Printer) PrintCandidates(reports []*types.ResearchReport) {
	if len(reports) == 0 {
		return
	}

	var sb strings.Builder
	for i, report := range reports {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more", len(reports)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("%s  %s\n", report.Date.Format("2006-01-02"), report.Title))
	}

	p.printBox("Other Candidates", strings.TrimRight(sb.String(), "\n"))
}

// PrintError outputs a terminal run failure.
func (p *Printer) PrintError(message string) {
	p.printBox("Routine Failed", message)
}
