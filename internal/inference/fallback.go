package inference

import "context"

// PlaceholderReportAnalysis returns the deterministic fallback payload used
// when report classification is unavailable.
func PlaceholderReportAnalysis() *ReportAnalysis {
	return &ReportAnalysis{
		Thesis:           "Placeholder thesis.",
		AssetClassImpact: []string{"Equities"},
		RegionImpact:     []string{"Global"},
		SectorImpact:     []string{"Technology"},
		CompanyImpact:    []string{},
		TimeHorizon:      "Medium-term",
		RiskConditions:   "Macro volatility",
	}
}

// PlaceholderVideoAnalysis returns the deterministic fallback payload used
// when video classification is unavailable.
func PlaceholderVideoAnalysis() *VideoAnalysis {
	return &VideoAnalysis{
		EducationLevel:    "intermediate",
		ContentStyle:      "analytical",
		TopicTags:         []string{"Market Update"},
		TranscriptSummary: "Video summary placeholder.",
	}
}

// PlaceholderDraft returns the deterministic fallback draft. The video link
// placeholder is included only when a video accompanies the bundle, matching
// the contract the model itself is held to.
func PlaceholderDraft(videoPresent bool) *DraftResponse {
	msg := "안녕하세요 고객님, 오늘 주목해볼만한 시장 동향을 공유드립니다.\n\n"
	if videoPresent {
		msg += "[영상 링크]\n\n"
	}
	msg += "궁금한 점 있으시면 언제든 연락주세요."

	return &DraftResponse{
		PBSummary:          "Summary for PB",
		PBTalkingPoints:    TalkingPoints{"1. Point A", "2. Point B"},
		ClientMessageDraft: msg,
	}
}

// StaticEngine serves placeholder payloads for every request. It is used when
// no API key is configured and in tests; it never fails.
type StaticEngine struct{}

// ParseResearchReport returns the placeholder report analysis.
func (StaticEngine) ParseResearchReport(ctx context.Context, text string) (*ReportAnalysis, error) {
	return PlaceholderReportAnalysis(), nil
}

// AnalyzeVideo returns the placeholder video analysis.
func (StaticEngine) AnalyzeVideo(ctx context.Context, title, description, transcript string) (*VideoAnalysis, error) {
	return PlaceholderVideoAnalysis(), nil
}

// GeneratePBDraft returns the placeholder draft.
func (StaticEngine) GeneratePBDraft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	return PlaceholderDraft(req.Video != nil), nil
}
