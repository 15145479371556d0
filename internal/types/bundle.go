package types

// HybridContentBundle pairs a research report with a SmartMoney video for one
// routine run. ReportID and VideoID are references by value; the bundle does
// not own either record's lifecycle. A bundle with neither reference is
// degenerate and must not be routed.
type HybridContentBundle struct {
	BundleID    string      `json:"bundle_id"`
	RoutineType RoutineType `json:"routine_type"`
	ReportID    string      `json:"report_id,omitempty"`
	VideoID     string      `json:"video_id,omitempty"`
	MatchReason string      `json:"match_reason"`

	// TargetSegments is append-only and deduplicated; the router fills it in
	// first-eligible-customer order.
	TargetSegments []Segment `json:"target_segments"`

	PBSummary       string     `json:"pb_summary,omitempty"`
	ClientSummary   string     `json:"client_summary,omitempty"`
	RecommendedCTA  string     `json:"recommended_cta"`
	Urgency         Urgency    `json:"urgency"`
	Confidence      Confidence `json:"confidence"`
	ComplianceNotes string     `json:"compliance_notes"`
}

// HasContent reports whether the bundle references at least one content item.
func (b *HybridContentBundle) HasContent() bool {
	return b.ReportID != "" || b.VideoID != ""
}

// AddTargetSegment appends seg unless it is already present.
func (b *HybridContentBundle) AddTargetSegment(seg Segment) {
	for _, s := range b.TargetSegments {
		if s == seg {
			return
		}
	}
	b.TargetSegments = append(b.TargetSegments, seg)
}
