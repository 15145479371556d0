package routing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgkim1976-spec/research-based-wm/internal/directory"
	"github.com/mgkim1976-spec/research-based-wm/internal/inference"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// scriptedEngine returns a fixed draft, or an error when failFor matches the
// requested segment.
type scriptedEngine struct {
	draft   *inference.DraftResponse
	failFor types.Segment
	calls   []inference.DraftRequest
}

func (s *scriptedEngine) ParseResearchReport(ctx context.Context, text string) (*inference.ReportAnalysis, error) {
	return inference.PlaceholderReportAnalysis(), nil
}

func (s *scriptedEngine) AnalyzeVideo(ctx context.Context, title, description, transcript string) (*inference.VideoAnalysis, error) {
	return inference.PlaceholderVideoAnalysis(), nil
}

func (s *scriptedEngine) GeneratePBDraft(ctx context.Context, req inference.DraftRequest) (*inference.DraftResponse, error) {
	s.calls = append(s.calls, req)
	if s.failFor != "" && req.Segment == s.failFor {
		return nil, errors.New("inference unavailable")
	}
	if s.draft != nil {
		resp := *s.draft
		return &resp, nil
	}
	return inference.PlaceholderDraft(req.Video != nil), nil
}

func roster() []*types.CustomerProfile {
	return directory.MockDirectory{}.Customers()
}

func morningBundle(videoID string) *types.HybridContentBundle {
	return &types.HybridContentBundle{
		BundleID:    "bndl_test",
		RoutineType: types.RoutineMorningHybrid,
		ReportID:    "r1",
		VideoID:     videoID,
		MatchReason: "공통 키워드(반도체) 매칭",
	}
}

func TestRouteAndDraft_MorningIncludesEveryoneRanked(t *testing.T) {
	engine := &scriptedEngine{}
	router := NewSegmentRouter(engine, nil)
	bundle := morningBundle("vid123")

	drafts := router.RouteAndDraft(context.Background(), bundle, roster(), nil, inference.PlaceholderVideoAnalysis())

	require.Len(t, drafts, 4)
	// S2 and S4 lead at priority 5, S1 and S3 follow at 2; ties keep input order.
	assert.Equal(t, "cust_002", drafts[0].CustomerID)
	assert.Equal(t, "cust_004", drafts[1].CustomerID)
	assert.Equal(t, "cust_001", drafts[2].CustomerID)
	assert.Equal(t, "cust_003", drafts[3].CustomerID)
	assert.Equal(t, 5, drafts[0].FollowUpPriority)
	assert.Equal(t, 2, drafts[3].FollowUpPriority)

	assert.Equal(t, []types.Segment{
		types.SegmentS1, types.SegmentS2, types.SegmentS3, types.SegmentS4,
	}, bundle.TargetSegments)
}

func TestRouteAndDraft_MorningDeliveryModes(t *testing.T) {
	engine := &scriptedEngine{}
	router := NewSegmentRouter(engine, nil)

	router.RouteAndDraft(context.Background(), morningBundle(""), roster(), nil, nil)

	modes := map[types.Segment]types.DeliveryMode{}
	for _, call := range engine.calls {
		modes[call.Segment] = call.DeliveryMode
	}
	assert.Equal(t, types.DeliveryVideoFirst, modes[types.SegmentS1])
	assert.Equal(t, types.DeliveryVideoFirst, modes[types.SegmentS2])
	assert.Equal(t, types.DeliveryTextFirst, modes[types.SegmentS3])
	assert.Equal(t, types.DeliveryTextFirst, modes[types.SegmentS4])
}

func TestRouteAndDraft_BiweeklyEligibility(t *testing.T) {
	engine := &scriptedEngine{}
	router := NewSegmentRouter(engine, nil)
	bundle := &types.HybridContentBundle{
		BundleID:    "bndl_test",
		RoutineType: types.RoutineBiweeklyDeep,
		ReportID:    "r1",
	}

	drafts := router.RouteAndDraft(context.Background(), bundle, roster(), nil, nil)

	require.Len(t, drafts, 2)
	for _, d := range drafts {
		assert.Equal(t, 8, d.FollowUpPriority)
	}
	assert.Equal(t, []types.Segment{types.SegmentS3, types.SegmentS4}, bundle.TargetSegments)
}

func TestRouteAndDraft_EducationalNoviceOrS1(t *testing.T) {
	engine := &scriptedEngine{}
	router := NewSegmentRouter(engine, nil)
	bundle := &types.HybridContentBundle{
		BundleID:    "bndl_test",
		RoutineType: types.RoutineEducational,
		ReportID:    "r1",
	}

	customers := roster()
	// Make an S3 customer a novice; they become eligible alongside S1.
	customers[2].Modifiers = append(customers[2].Modifiers, "Novice")

	drafts := router.RouteAndDraft(context.Background(), bundle, customers, nil, nil)

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, d.CustomerID)
	}
	assert.ElementsMatch(t, []string{"cust_001", "cust_003"}, ids)
}

func TestRouteAndDraft_UnknownRoutineFallsBack(t *testing.T) {
	engine := &scriptedEngine{}
	router := NewSegmentRouter(engine, nil)
	bundle := &types.HybridContentBundle{
		BundleID:    "bndl_test",
		RoutineType: types.RoutineType("ad_hoc"),
		ReportID:    "r1",
	}

	drafts := router.RouteAndDraft(context.Background(), bundle, roster(), nil, nil)

	require.Len(t, drafts, 4)
	for _, d := range drafts {
		assert.Equal(t, 1, d.FollowUpPriority)
	}
}

func TestRouteAndDraft_ResolvesVideoPlaceholders(t *testing.T) {
	engine := &scriptedEngine{draft: &inference.DraftResponse{
		PBSummary:          "요약",
		PBTalkingPoints:    inference.TalkingPoints{"포인트"},
		ClientMessageDraft: "고객님, [영상 링크] 확인해 보세요. English copy: [Video Link]",
	}}
	router := NewSegmentRouter(engine, nil)

	drafts := router.RouteAndDraft(context.Background(), morningBundle("vid123"), roster(), nil, nil)

	for _, d := range drafts {
		assert.NotContains(t, d.ClientMessageDraft, "[영상 링크]")
		assert.NotContains(t, d.ClientMessageDraft, "[Video Link]")
		assert.Equal(t, 2, strings.Count(d.ClientMessageDraft, "https://www.youtube.com/watch?v=vid123"))
	}
}

func TestRouteAndDraft_ScrubsStrayPlaceholderWithoutVideo(t *testing.T) {
	// The model is instructed never to emit the token without a video, but
	// the router validates instead of trusting the instruction.
	engine := &scriptedEngine{draft: &inference.DraftResponse{
		ClientMessageDraft: "고객님 안녕하세요.\n\n[영상 링크]\n\n좋은 하루 되세요.",
	}}
	router := NewSegmentRouter(engine, nil)

	drafts := router.RouteAndDraft(context.Background(), morningBundle(""), roster(), nil, nil)

	for _, d := range drafts {
		assert.NotContains(t, d.ClientMessageDraft, "[영상 링크]")
		assert.NotContains(t, d.ClientMessageDraft, "youtube.com")
		assert.NotContains(t, d.ClientMessageDraft, "\n\n\n")
	}
}

func TestRouteAndDraft_FallbackDraftOnInferenceFailure(t *testing.T) {
	engine := &scriptedEngine{failFor: types.SegmentS2}
	router := NewSegmentRouter(engine, nil)

	drafts := router.RouteAndDraft(context.Background(), morningBundle("vid123"), roster(), nil, nil)

	// The failing customer stays in the queue with non-empty content.
	require.Len(t, drafts, 4)
	var s2Draft *types.PBActionDraft
	for _, d := range drafts {
		if d.CustomerID == "cust_002" {
			s2Draft = d
		}
	}
	require.NotNil(t, s2Draft)
	assert.NotEmpty(t, s2Draft.ClientMessageDraft)
	assert.NotEmpty(t, s2Draft.PBTalkingPoints)
	// Even the fallback message gets its placeholder resolved.
	assert.Contains(t, s2Draft.ClientMessageDraft, "https://www.youtube.com/watch?v=vid123")
}

func TestRouteAndDraft_TargetSegmentsDedup(t *testing.T) {
	engine := &scriptedEngine{}
	router := NewSegmentRouter(engine, nil)
	bundle := morningBundle("")

	customers := roster()
	// Two customers share S2.
	customers = append(customers, &types.CustomerProfile{
		CustomerID: "cust_005", SegmentID: types.SegmentS2, AssetTier: "Low", TradingFrequency: "High",
	})

	router.RouteAndDraft(context.Background(), bundle, customers, nil, nil)

	seen := map[types.Segment]int{}
	for _, s := range bundle.TargetSegments {
		seen[s]++
	}
	for seg, n := range seen {
		assert.Equal(t, 1, n, "segment %s duplicated", seg)
	}
}

func TestRouteAndDraft_DraftInvariants(t *testing.T) {
	engine := &scriptedEngine{}
	router := NewSegmentRouter(engine, nil)
	bundle := morningBundle("vid123")

	drafts := router.RouteAndDraft(context.Background(), bundle, roster(), nil, nil)

	ids := map[string]bool{}
	for _, d := range drafts {
		assert.True(t, d.ReviewRequired, "drafts are never auto-sent")
		assert.Equal(t, "Kakao/SMS", d.OutreachChannel)
		assert.Equal(t, bundle.BundleID, d.BundleID)
		assert.Contains(t, d.Traceability, bundle.MatchReason)
		assert.False(t, ids[d.ActionID], "action ids must be unique")
		ids[d.ActionID] = true
	}
}
