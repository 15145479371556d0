// Package inference wraps the LLM backend behind the three request shapes the
// pipeline needs: report classification, video classification, and outreach
// draft generation. Every call returns a well-formed payload; any failure
// substitutes a static placeholder so downstream stages never see partial data.
package inference

import (
	"encoding/json"
	"strings"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// ReportAnalysis is the structured thesis extracted from a research report.
type ReportAnalysis struct {
	Thesis           string   `json:"thesis"`
	AssetClassImpact []string `json:"asset_class_impact"`
	RegionImpact     []string `json:"region_impact"`
	SectorImpact     []string `json:"sector_impact"`
	CompanyImpact    []string `json:"company_impact"`
	TimeHorizon      string   `json:"time_horizon"`
	RiskConditions   string   `json:"risk_conditions"`

	// Passed through for the dashboard, not produced by the model.
	ReportTitle string `json:"report_title,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	PDFURL      string `json:"pdf_url,omitempty"`
}

// InferredTags returns the union of sector and asset-class tags, which is
// what the pipeline assigns to the report after classification.
func (a *ReportAnalysis) InferredTags() []string {
	tags := make([]string, 0, len(a.SectorImpact)+len(a.AssetClassImpact))
	tags = append(tags, a.SectorImpact...)
	tags = append(tags, a.AssetClassImpact...)
	return tags
}

// VideoAnalysis is the structured classification of a SmartMoney video.
type VideoAnalysis struct {
	EducationLevel    string   `json:"education_level"`
	ContentStyle      string   `json:"content_style"`
	TopicTags         []string `json:"topic_tags"`
	TranscriptSummary string   `json:"transcript_summary"`

	SourceURL string `json:"source_url,omitempty"`
}

// DraftRequest carries everything the model needs to draft an outreach
// message for one customer segment. Report and Video may be nil; the prompt
// instructs the model to focus on whichever content is present.
type DraftRequest struct {
	RoutineType  types.RoutineType
	Segment      types.Segment
	Report       *ReportAnalysis
	Video        *VideoAnalysis
	DeliveryMode types.DeliveryMode
}

// DraftResponse is the model's drafting output.
type DraftResponse struct {
	PBSummary          string        `json:"pb_summary"`
	PBTalkingPoints    TalkingPoints `json:"pb_talking_points"`
	ClientMessageDraft string        `json:"client_message_draft"`
}

// TalkingPoints tolerates the model returning either a single string or a
// list of bullet strings.
type TalkingPoints []string

// UnmarshalJSON accepts a JSON string or a JSON array of strings.
func (tp *TalkingPoints) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*tp = TalkingPoints{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*tp = TalkingPoints(list)
	return nil
}

// MarshalJSON always emits the list form.
func (tp TalkingPoints) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(tp))
}

// Joined renders the points as a single newline-joined string, the canonical
// form stored on a PBActionDraft.
func (tp TalkingPoints) Joined() string {
	return strings.Join([]string(tp), "\n")
}
