package types

import "time"

// PBActionDraft is one outreach draft for one customer, produced by the
// router. Drafts are immutable after creation and always require human review
// before anything is sent.
type PBActionDraft struct {
	ActionID           string      `json:"action_id"`
	CustomerID         string      `json:"customer_id"`
	BundleID           string      `json:"bundle_id"`
	RoutineType        RoutineType `json:"routine_type"`
	OutreachChannel    string      `json:"outreach_channel"`
	PBTalkingPoints    string      `json:"pb_talking_points"`
	ClientMessageDraft string      `json:"client_message_draft"`
	FollowUpPriority   int         `json:"follow_up_priority"`
	Traceability       string      `json:"traceability"`
	ReviewRequired     bool        `json:"review_required"`
}

// AuditRecord is the append-only trace written at the end of a routine run.
// It captures why each draft was produced; it is never mutated afterwards.
type AuditRecord struct {
	AuditID           string         `json:"audit_id"`
	Timestamp         time.Time      `json:"timestamp"`
	ReportID          string         `json:"report_id,omitempty"`
	VideoID           string         `json:"video_id,omitempty"`
	CustomerID        string         `json:"customer_id,omitempty"`
	WorkflowName      string         `json:"workflow_name"`
	DecisionPoints    map[string]any `json:"decision_points"`
	GeneratedOutputs  map[string]any `json:"generated_outputs"`
	Rationale         string         `json:"rationale"`
	HumanReviewStatus string         `json:"human_review_status"`
}
