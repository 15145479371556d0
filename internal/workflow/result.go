package workflow

import (
	"github.com/mgkim1976-spec/research-based-wm/internal/inference"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// Status is the outcome of a routine run.
type Status string

// Run outcomes.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RoutineResult is the aggregate outcome of one routine run, consumed by the
// dashboard and the CLI. On error only Status and Message are set.
type RoutineResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	Bundle     *types.HybridContentBundle `json:"bundle,omitempty"`
	Drafts     []*types.PBActionDraft     `json:"drafts,omitempty"`
	Audit      *types.AuditRecord         `json:"audit,omitempty"`
	ReportData *inference.ReportAnalysis  `json:"report_data,omitempty"`
	VideoData  *inference.VideoAnalysis   `json:"video_data,omitempty"`

	// OtherReports lists today's non-selected candidates for operator
	// visibility.
	OtherReports []*types.ResearchReport `json:"other_reports,omitempty"`

	// Warnings surfaces non-fatal degradations (e.g. a failed history
	// persist) without failing the run.
	Warnings []string `json:"warnings,omitempty"`
}

func errorResult(message string) *RoutineResult {
	return &RoutineResult{Status: StatusError, Message: message}
}
